// Command userplan switches a user between the free and pro plans. It is the
// operator tool used until billing automation lands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

func main() {
	var (
		emailFlag string
		planFlag  string
	)
	flag.StringVar(&emailFlag, "email", "", "email of the account to update")
	flag.StringVar(&planFlag, "plan", "", "target plan (free or pro)")
	flag.Parse()

	email := strings.TrimSpace(strings.ToLower(emailFlag))
	if email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(1)
	}
	plan := strings.TrimSpace(strings.ToLower(planFlag))
	switch domain.PlanTier(plan) {
	case domain.PlanFree, domain.PlanPro:
	default:
		fmt.Fprintf(os.Stderr, "unsupported plan %q (free or pro)\n", planFlag)
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	var userID string
	row := runner.QueryRow(ctx, sqlinline.QSelectUserByEmail, email)
	var u domain.User
	var rawPlan string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Locale, &rawPlan, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			fmt.Fprintf(os.Stderr, "no account with email %s\n", email)
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("user lookup failed")
	}
	userID = u.ID

	if domain.ParsePlanTier(rawPlan) == domain.PlanTier(plan) {
		fmt.Printf("%s already on plan %s\n", email, plan)
		return
	}

	var updatedID, updatedEmail, updatedPlan string
	row = runner.QueryRow(ctx, sqlinline.QUpdateUserPlan, userID, plan)
	if err := row.Scan(&updatedID, &updatedEmail, &updatedPlan); err != nil {
		logger.Fatal().Err(err).Msg("plan update failed")
	}
	fmt.Printf("%s is now on plan %s\n", updatedEmail, updatedPlan)
}
