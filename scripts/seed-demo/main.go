// seed-demo seeds six months of realistic financial data for a demo user,
// enough history for the analytics endpoints (patterns, anomalies, forecast,
// health, recurring candidates) to produce interesting output.
//
// Usage:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account.json
//	export GOOGLE_CLOUD_PROJECT=your-project-id
//	go run ./scripts/seed-demo/ -user demo-user
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/finsight-app/backend/internal/model"
	"github.com/finsight-app/backend/internal/store"
)

type spendingProfile struct {
	category string
	merchant string
	mean     float64
	jitter   float64
	perMonth int
}

var profiles = []spendingProfile{
	{"groceries", "Whole Foods", 85, 20, 6},
	{"dining", "Local Bistro", 45, 15, 4},
	{"transport", "Metro Card", 30, 5, 4},
	{"entertainment", "Cinema City", 25, 10, 2},
	{"utilities", "City Power", 120, 10, 1},
}

func main() {
	userID := flag.String("user", "demo-user", "user id to seed data for")
	flag.Parse()

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT environment variable is required")
	}

	ctx := context.Background()
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()
	st := store.NewFirestoreStore(client)

	// Deterministic for reproducibility.
	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	count := 0

	for monthsAgo := 6; monthsAgo >= 1; monthsAgo-- {
		monthStart := now.AddDate(0, -monthsAgo, 0)

		// Salary lands at the start of each month.
		if err := createTransaction(ctx, st, &model.Transaction{
			UserID:   *userID,
			Kind:     model.KindIncome,
			Amount:   5200,
			Category: "salary",
			Merchant: "Acme Corp",
			Date:     monthStart,
		}); err != nil {
			log.Fatalf("Failed to seed income: %v", err)
		}
		count++

		for _, p := range profiles {
			for i := 0; i < p.perMonth; i++ {
				amount := p.mean + (rng.Float64()*2-1)*p.jitter
				day := rng.Intn(27) + 1
				if err := createTransaction(ctx, st, &model.Transaction{
					UserID:   *userID,
					Kind:     model.KindExpense,
					Amount:   float64(int(amount*100)) / 100,
					Category: p.category,
					Merchant: p.merchant,
					Date:     monthStart.AddDate(0, 0, day),
				}); err != nil {
					log.Fatalf("Failed to seed expense: %v", err)
				}
				count++
			}
		}

		// Monthly Netflix charge, steady amount: recurring-candidate bait.
		if err := createTransaction(ctx, st, &model.Transaction{
			UserID:   *userID,
			Kind:     model.KindExpense,
			Amount:   15.99,
			Category: "entertainment",
			Merchant: "Netflix",
			Date:     monthStart.AddDate(0, 0, 15),
		}); err != nil {
			log.Fatalf("Failed to seed subscription: %v", err)
		}
		count++
	}

	// One recent outlier so anomaly detection has something to find.
	if err := createTransaction(ctx, st, &model.Transaction{
		UserID:   *userID,
		Kind:     model.KindExpense,
		Amount:   450,
		Category: "groceries",
		Merchant: "Whole Foods",
		Date:     now.AddDate(0, 0, -2),
	}); err != nil {
		log.Fatalf("Failed to seed outlier: %v", err)
	}
	count++

	log.Printf("Seeded %d transactions for user %s", count, *userID)
}

func createTransaction(ctx context.Context, st store.Store, txn *model.Transaction) error {
	now := time.Now()
	txn.ID = uuid.New().String()
	txn.AmountCents = int64(txn.Amount*100 + 0.5)
	txn.CreatedAt = now
	txn.UpdatedAt = now
	return st.CreateTransaction(ctx, txn)
}
