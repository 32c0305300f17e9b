package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/somoapp/campus-events/internal/config"
	"github.com/somoapp/campus-events/internal/domain"
)

// Seeds the universities reference collection (10 public + 10 private in
// Nairobi) and a handful of sample events. Safe to re-run: it skips
// collections that already hold documents.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.MongoDatabase)

	if err := seedUniversities(ctx, db); err != nil {
		log.Fatalf("failed to seed universities: %v", err)
	}
	if err := seedEvents(ctx, db); err != nil {
		log.Fatalf("failed to seed events: %v", err)
	}
}

func seedUniversities(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("universities")

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("universities already seeded (%d documents)", n)
		return nil
	}

	campuses := []interface{}{
		domain.Campus{Name: "University of Nairobi (Main Campus)", Latitude: -1.280971, Longitude: 36.8135383, Type: domain.CampusTypePublic, Domain: "uonbi.ac.ke"},
		domain.Campus{Name: "Kenyatta University (Main Campus)", Latitude: -1.1820777, Longitude: 36.9341004, Type: domain.CampusTypePublic, Domain: "ku.ac.ke"},
		domain.Campus{Name: "Technical University of Kenya (TUK)", Latitude: -1.2912589, Longitude: 36.8227188, Type: domain.CampusTypePublic, Domain: "tukenya.ac.ke"},
		domain.Campus{Name: "JKUAT Juja (Main Campus)", Latitude: -1.0913809, Longitude: 36.9936649, Type: domain.CampusTypePublic, Domain: "jkuat.ac.ke"},
		domain.Campus{Name: "Multimedia University of Kenya", Latitude: -1.3819407, Longitude: 36.7656496, Type: domain.CampusTypePublic, Domain: "mmu.ac.ke"},
		domain.Campus{Name: "Co-operative University of Kenya (Karen)", Latitude: -1.3665655, Longitude: 36.7266569, Type: domain.CampusTypePublic, Domain: "cuk.ac.ke"},
		domain.Campus{Name: "Kirinyaga University", Latitude: -0.6956697, Longitude: 35.9761505, Type: domain.CampusTypePublic, Domain: "kyu.ac.ke"},
		domain.Campus{Name: "Machakos University", Latitude: -1.5308534, Longitude: 37.2601941, Type: domain.CampusTypePublic, Domain: "mksu.ac.ke"},
		domain.Campus{Name: "South Eastern Kenya University", Latitude: -1.37798, Longitude: 37.7178789, Type: domain.CampusTypePublic, Domain: "seku.ac.ke"},
		domain.Campus{Name: "Maasai Mara University", Latitude: -1.0943661, Longitude: 35.8580261, Type: domain.CampusTypePublic, Domain: "mmarau.ac.ke"},
		domain.Campus{Name: "Strathmore University", Latitude: -1.3089602, Longitude: 36.8075432, Type: domain.CampusTypePrivate, Domain: "strathmore.edu"},
		domain.Campus{Name: "USIU-Africa", Latitude: -1.2211537, Longitude: 36.880816, Type: domain.CampusTypePrivate, Domain: "usiu.ac.ke"},
		domain.Campus{Name: "Catholic University of Eastern Africa (CUEA)", Latitude: -1.3559738, Longitude: 36.7119972, Type: domain.CampusTypePrivate, Domain: "cuea.edu"},
		domain.Campus{Name: "Daystar University (Valley Road)", Latitude: -1.2975367, Longitude: 36.7976492, Type: domain.CampusTypePrivate, Domain: "daystar.ac.ke"},
		domain.Campus{Name: "Africa Nazarene University (Nairobi CBD)", Latitude: -1.3997791, Longitude: 36.706351, Type: domain.CampusTypePrivate, Domain: "anu.ac.ke"},
		domain.Campus{Name: "KCA University", Latitude: -1.2672544, Longitude: 36.8183049, Type: domain.CampusTypePrivate, Domain: "kcau.ac.ke"},
		domain.Campus{Name: "St. Paul's University (Limuru Campus)", Latitude: -1.1475883, Longitude: 36.6632489, Type: domain.CampusTypePrivate, Domain: "spu.ac.ke"},
		domain.Campus{Name: "Mount Kenya University (Juja Campus)", Latitude: -1.0448217, Longitude: 36.7932304, Type: domain.CampusTypePrivate, Domain: "mku.ac.ke"},
		domain.Campus{Name: "Riara University", Latitude: -1.3148565, Longitude: 36.8043483, Type: domain.CampusTypePrivate, Domain: "riarauniversity.ac.ke"},
		domain.Campus{Name: "Africa International University (Karen)", Latitude: -1.30678, Longitude: 36.6830321, Type: domain.CampusTypePrivate, Domain: "aiu.ac.ke"},
	}

	res, err := coll.InsertMany(ctx, campuses)
	if err != nil {
		return err
	}
	log.Printf("inserted %d universities", len(res.InsertedIDs))
	return nil
}

func seedEvents(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("events")

	n, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("events already seeded (%d documents)", n)
		return nil
	}

	now := time.Now().UTC()
	in := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	events := []interface{}{
		domain.Event{
			Title:       "Campus Bash 2026",
			Description: "The biggest student party of the year! Live DJs and good vibes.",
			ImageURL:    "https://picsum.photos/400/250?random=1",
			Location:    "University of Nairobi (Main Campus)",
			OpenTo:      "everyone",
			StartTime:   in(3*24*time.Hour + 18*time.Hour),
			EndTime:     in(4*24*time.Hour + 2*time.Hour),
			TicketPrice: 500,
			TicketsSold: 24,
			CreatedBy:   "roy.murwa@strathmore.edu",
			CreatedAt:   now,
		},
		domain.Event{
			Title:       "Hackathon Nairobi",
			Description: "24-hour coding challenge for students with exciting prizes and job offers.",
			ImageURL:    "https://picsum.photos/400/250?random=2",
			Location:    "Strathmore University",
			OpenTo:      "everyone",
			StartTime:   in(5*24*time.Hour + 9*time.Hour),
			EndTime:     in(5*24*time.Hour + 21*time.Hour),
			IsFree:      true,
			TicketsSold: 15,
			CreatedBy:   "roy.murwa@strathmore.edu",
			CreatedAt:   now,
		},
		domain.Event{
			Title:            "Rooftop Poetry Night",
			Description:      "Spoken word and live acoustic sets in the CBD.",
			ImageURL:         "https://picsum.photos/400/250?random=3",
			Location:         "KICC Rooftop",
			OpenTo:           "everyone",
			StartTime:        in(7*24*time.Hour + 19*time.Hour),
			TicketPrice:      300,
			TicketsSold:      8,
			IsCustomLocation: true,
			ServiceFee:       50,
			CreatedBy:        "jane.wanjiru@uonbi.ac.ke",
			CreatedAt:        now,
		},
	}

	res, err := coll.InsertMany(ctx, events)
	if err != nil {
		return err
	}
	log.Printf("inserted %d events", len(res.InsertedIDs))
	return nil
}
