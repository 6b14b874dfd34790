// invitegen mints invite codes from the command line. Invites have no
// HTTP endpoint; issuing one is an operator action.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/alexampersandria/ephemeride/internal/config"
	"github.com/alexampersandria/ephemeride/internal/database"
	"github.com/alexampersandria/ephemeride/internal/repository"
)

func main() {
	code := flag.String("code", "", "desired invite code (random if empty or taken)")
	count := flag.Int("n", 1, "number of invites to generate")
	flag.Parse()

	cfg := config.Load()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	invites := repository.NewInviteRepo(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := 0; i < *count; i++ {
		inv, err := invites.Generate(ctx, *code)
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
		fmt.Println(inv.Code)
	}
}
