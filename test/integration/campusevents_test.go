package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/somoapp/campus-events/internal/adapters/mongo"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
	"github.com/somoapp/campus-events/internal/service"
)

func setupMongo(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		t.Fatal(err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint))
	if err != nil {
		container.Terminate(ctx)
		t.Fatal(err)
	}

	db := client.Database("campus_events_test")
	cleanup := func() {
		client.Disconnect(ctx)
		container.Terminate(ctx)
	}
	return db, cleanup
}

func TestReserve_IdempotentAndCountsOnce(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	logger := observability.NewLogger()
	events := mongoadapter.NewEventRepository(db, logger)
	optins := mongoadapter.NewOptInRepository(db, logger)
	if err := optins.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now().Add(48 * time.Hour)
	eventID, err := events.Insert(ctx, domain.Event{
		Title:     "Hackathon Nairobi",
		Location:  "Strathmore University",
		OpenTo:    "everyone",
		StartTime: &start,
		IsFree:    true,
		CreatedBy: "roy.murwa@strathmore.edu",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := service.NewReservationService(events, optins, nil, logger)

	status, err := svc.Reserve(ctx, eventID.Hex(), "jane.wanjiru@uonbi.ac.ke")
	if err != nil {
		t.Fatal(err)
	}
	if status != service.StatusReserved {
		t.Errorf("first reserve status = %q, want reserved", status)
	}

	status, err = svc.Reserve(ctx, eventID.Hex(), "jane.wanjiru@uonbi.ac.ke")
	if err != nil {
		t.Fatal(err)
	}
	if status != service.StatusAlreadyReserved {
		t.Errorf("second reserve status = %q, want already_reserved", status)
	}

	got, err := events.FindByID(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TicketsSold != 1 {
		t.Errorf("tickets_sold = %d, want exactly 1 after duplicate reserve", got.TicketsSold)
	}

	optin, err := optins.Get(ctx, "jane.wanjiru@uonbi.ac.ke")
	if err != nil {
		t.Fatal(err)
	}
	if len(optin.Events) != 1 || optin.Events[0] != eventID {
		t.Errorf("opt-in set = %v, want exactly one occurrence of %v", optin.Events, eventID)
	}
}

func TestReserve_Validation(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	logger := observability.NewLogger()
	events := mongoadapter.NewEventRepository(db, logger)
	optins := mongoadapter.NewOptInRepository(db, logger)
	svc := service.NewReservationService(events, optins, nil, logger)

	if _, err := svc.Reserve(ctx, primitive.NewObjectID().Hex(), ""); err != domain.ErrMissingEmail {
		t.Errorf("missing email: got %v, want ErrMissingEmail", err)
	}
	if _, err := svc.Reserve(ctx, primitive.NewObjectID().Hex(), "a@b.edu"); err != domain.ErrNotFound {
		t.Errorf("unknown event: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Reserve(ctx, "not-a-hex-id", "a@b.edu"); err != domain.ErrNotFound {
		t.Errorf("bad id: got %v, want ErrNotFound", err)
	}
}

func TestOptIns_AddEventGating(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	optins := mongoadapter.NewOptInRepository(db, observability.NewLogger())
	if err := optins.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	eventID := primitive.NewObjectID()

	added, err := optins.AddEvent(ctx, "x@ku.ac.ke", eventID)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("first add should report added=true")
	}

	added, err = optins.AddEvent(ctx, "x@ku.ac.ke", eventID)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("second add should report added=false")
	}

	// A different event for the same email still goes through.
	added, err = optins.AddEvent(ctx, "x@ku.ac.ke", primitive.NewObjectID())
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("different event should report added=true")
	}
}

func TestCatalog_CreateAndList(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	logger := observability.NewLogger()
	events := mongoadapter.NewEventRepository(db, logger)
	campuses := mongoadapter.NewCampusRepository(db, logger)
	optins := mongoadapter.NewOptInRepository(db, logger)

	if _, err := db.Collection("universities").InsertOne(ctx, domain.Campus{
		Name: "Strathmore University", Latitude: -1.3089602, Longitude: 36.8075432,
		Type: domain.CampusTypePrivate, Domain: "strathmore.edu",
	}); err != nil {
		t.Fatal(err)
	}

	serializer := service.NewEventSerializer(optins)
	catalog := service.NewCatalogService(events, campuses, serializer, nil,
		domain.DefaultServiceFeeRate, domain.DefaultMinServiceFee, logger)

	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(72 * time.Hour)

	first, err := catalog.Create(ctx, service.CreateEventInput{
		Title:     "Career Fair",
		Campus:    "strathmore university",
		StartTime: &later,
		IsFree:    true,
		CreatedBy: "roy.murwa@strathmore.edu",
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.Location != "Strathmore University" {
		t.Errorf("location = %q, want canonical campus name", first.Location)
	}
	if first.CampusID == "" {
		t.Error("expected campus_id to be resolved for a known campus")
	}
	if first.TicketPrice != 0 || first.ServiceFee != 0 {
		t.Errorf("free event: price=%v fee=%v, want 0/0", first.TicketPrice, first.ServiceFee)
	}

	second, err := catalog.Create(ctx, service.CreateEventInput{
		Title:            "Warehouse Rave",
		Location:         "Industrial Area",
		StartTime:        &soon,
		TicketPrice:      1000,
		IsCustomLocation: true,
		CreatedBy:        "roy.murwa@strathmore.edu",
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ServiceFee != 100 {
		t.Errorf("service_fee = %v, want 100 (10%% of 1000)", second.ServiceFee)
	}

	// Default sort: soonest start first.
	list, err := catalog.List(ctx, service.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list len = %d, want 2", len(list))
	}
	if list[0].Title != "Warehouse Rave" {
		t.Errorf("default sort first = %q, want soonest-starting event", list[0].Title)
	}

	// latest: newest created first; both created in this test so just check shape.
	list, err = catalog.List(ctx, service.ListQuery{Sort: "latest", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("limit ignored: got %d results", len(list))
	}

	// Campus filter resolves case-insensitively to the canonical record.
	list, err = catalog.List(ctx, service.ListQuery{Campus: "STRATHMORE UNIVERSITY"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Career Fair" {
		t.Errorf("campus filter = %v, want only Career Fair", list)
	}

	// Unresolved campus name yields empty, not unfiltered.
	list, err = catalog.List(ctx, service.ListQuery{Campus: "Hogwarts"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("unresolved campus filter returned %d events, want 0", len(list))
	}
}

func TestNearest_FallbackToHomeCampus(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	logger := observability.NewLogger()
	campuses := mongoadapter.NewCampusRepository(db, logger)
	users := mongoadapter.NewUserRepository(db, logger)
	events := mongoadapter.NewEventRepository(db, logger)
	optins := mongoadapter.NewOptInRepository(db, logger)

	res, err := db.Collection("universities").InsertMany(ctx, []interface{}{
		domain.Campus{Name: "University of Nairobi (Main Campus)", Latitude: -1.280971, Longitude: 36.8135383, Type: domain.CampusTypePublic},
		domain.Campus{Name: "Strathmore University", Latitude: -1.3089602, Longitude: 36.8075432, Type: domain.CampusTypePrivate},
	})
	if err != nil {
		t.Fatal(err)
	}
	strathID := res.InsertedIDs[1].(primitive.ObjectID)

	if err := users.Upsert(ctx, domain.User{
		Email:      "roy.murwa@strathmore.edu",
		CampusID:   strathID,
		CampusName: "Strathmore University",
		CreatedAt:  time.Now(),
	}); err != nil {
		t.Fatal(err)
	}

	svc := service.NewCampusService(campuses, users, events, nil, service.NewEventSerializer(optins), logger)

	// Explicit coordinates: measured result, CBD is closest to UoN.
	got, err := svc.Nearest(ctx, service.NearestQuery{RawLat: "-1.2921", RawLng: "36.8219"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Fallback {
		t.Error("explicit coordinates must not be marked fallback")
	}
	if got.University.Name != "University of Nairobi (Main Campus)" {
		t.Errorf("nearest = %q, want UoN", got.University.Name)
	}

	// No coordinates, known viewer: home campus substitutes and is flagged.
	got, err = svc.Nearest(ctx, service.NearestQuery{ViewerEmail: "roy.murwa@strathmore.edu"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Fallback {
		t.Error("expected fallback flag for substituted coordinates")
	}
	if got.University.Name != "Strathmore University" {
		t.Errorf("fallback nearest = %q, want home campus", got.University.Name)
	}

	// No coordinates, unknown viewer.
	if _, err := svc.Nearest(ctx, service.NearestQuery{ViewerEmail: "ghost@nowhere.com"}); err != domain.ErrMissingCoordinates {
		t.Errorf("unknown viewer: got %v, want ErrMissingCoordinates", err)
	}
	if _, err := svc.Nearest(ctx, service.NearestQuery{}); err != domain.ErrMissingCoordinates {
		t.Errorf("no identity: got %v, want ErrMissingCoordinates", err)
	}

	// Malformed coordinates.
	if _, err := svc.Nearest(ctx, service.NearestQuery{RawLat: "abc", RawLng: "36.8"}); err != domain.ErrInvalidCoordinates {
		t.Errorf("bad lat: got %v, want ErrInvalidCoordinates", err)
	}
}

func TestNearestWithEvents_KeywordJoin(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	logger := observability.NewLogger()
	campuses := mongoadapter.NewCampusRepository(db, logger)
	users := mongoadapter.NewUserRepository(db, logger)
	events := mongoadapter.NewEventRepository(db, logger)
	optins := mongoadapter.NewOptInRepository(db, logger)

	if _, err := db.Collection("universities").InsertOne(ctx, domain.Campus{
		Name: "Strathmore University", Latitude: -1.3089602, Longitude: 36.8075432, Type: domain.CampusTypePrivate,
	}); err != nil {
		t.Fatal(err)
	}

	soon := time.Now().Add(24 * time.Hour)
	if _, err := events.Insert(ctx, domain.Event{
		Title: "Hackathon", Location: "Strathmore University", StartTime: &soon,
		OpenTo: "everyone", CreatedAt: time.Now(), CreatedBy: "a@b.edu",
	}); err != nil {
		t.Fatal(err)
	}
	// First-word match on the legacy free-text field.
	if _, err := events.Insert(ctx, domain.Event{
		Title: "Alumni Mixer", Location: "Strathmore Business School", StartTime: &soon,
		OpenTo: "everyone", CreatedAt: time.Now(), CreatedBy: "a@b.edu",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := events.Insert(ctx, domain.Event{
		Title: "Unrelated", Location: "KICC Rooftop", StartTime: &soon,
		OpenTo: "everyone", CreatedAt: time.Now(), CreatedBy: "a@b.edu",
	}); err != nil {
		t.Fatal(err)
	}

	svc := service.NewCampusService(campuses, users, events, nil, service.NewEventSerializer(optins), logger)

	got, err := svc.NearestWithEvents(ctx, service.NearestQuery{RawLat: "-1.2921", RawLng: "36.8219"}, 99)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Results) != 1 {
		t.Fatalf("results len = %d, want 1 (limit capped at campus count)", len(got.Results))
	}
	if len(got.Results[0].Events) != 2 {
		t.Errorf("joined events = %d, want 2 (full name + first word matches)", len(got.Results[0].Events))
	}
	for _, e := range got.Results[0].Events {
		if e.Title == "Unrelated" {
			t.Error("keyword join must not match unrelated locations")
		}
	}
}
