package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"cloud-commerce-portal/internal/config"
	"cloud-commerce-portal/internal/domain/model"
	pg "cloud-commerce-portal/internal/infra/db/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	offerRepo := pg.NewOfferRepo(pool)

	// If offers already exist, do nothing
	offers, err := offerRepo.ListAll(ctx, nil)
	if err != nil {
		log.Fatalf("list offers: %v", err)
	}
	if len(offers) > 0 {
		fmt.Printf("%d offers already present. No changes.\n", len(offers))
		for _, o := range offers {
			fmt.Printf("  - %s (upstream=%s, price=%s/seat/year)\n", o.Title, o.UpstreamOfferID, o.Price)
		}
		return
	}

	// Sample catalog for exercising the order flow
	seed := []struct {
		Upstream string
		Title    string
		Price    string
	}{
		{"CFQ7TTC0LH18", "Business Basic", "72.00"},
		{"CFQ7TTC0LDPB", "Business Standard", "150.00"},
		{"CFQ7TTC0LCHC", "Business Premium", "264.00"},
	}

	for _, s := range seed {
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			log.Fatalf("parse price %q: %v", s.Price, err)
		}
		offer, err := model.NewPartnerOffer(ulid.Make().String(), s.Upstream, s.Title, price)
		if err != nil {
			log.Fatalf("build offer %q: %v", s.Title, err)
		}
		if err := offerRepo.Save(ctx, nil, offer); err != nil {
			log.Fatalf("save offer %q: %v", s.Title, err)
		}
		fmt.Printf("seeded: %s (id=%s, price=%s/seat/year)\n", offer.Title, offer.ID, offer.Price)
	}

	fmt.Println("Seeding complete.")
}
