package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"examly/internal/shared/config"
	"examly/internal/shared/database"
	"examly/internal/slots"
	"examly/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("🌱 Starting Examly Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Make sure the schema and capacity constraints exist before seeding
	if err := database.AutoMigrate(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	if err := database.MigrateConstraints(db.GetPostgreSQL()); err != nil {
		log.Fatalf("Failed to apply capacity constraints: %v", err)
	}

	seeder := &Seeder{db: db, cfg: cfg}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"reservations",
		"slots",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Seed users first (no dependencies)
	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	// Seed the bookable slot calendar
	if err := s.SeedSlotCalendar(); err != nil {
		return fmt.Errorf("failed to seed slot calendar: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users.
// Registration through the API never grants the admin role, so the
// seeder is the only place admin accounts come from.
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@examly.io", users.RoleAdmin},
		{"user1", "Jiho", "Park", "jiho.park@examly.io", users.RoleUser},
		{"user2", "Minseo", "Kim", "minseo.kim@examly.io", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedSlotCalendar generates the slot grid for the next two weeks in the
// configured exam timezone, starting beyond the booking notice window so
// every seeded slot is immediately bookable.
func (s *Seeder) SeedSlotCalendar() error {
	fmt.Println("  📅 Seeding slot calendar...")

	slotRepo := slots.NewRepository(s.db.GetPostgreSQL())
	slotService := slots.NewService(slotRepo, slots.Settings{
		DefaultCapacity: s.cfg.Booking.SlotCapacity,
		SlotDuration:    s.cfg.Booking.SlotDuration,
		Location:        s.cfg.EventLocation(),
	})

	location := s.cfg.EventLocation()
	firstDay := time.Now().In(location).Add(s.cfg.Booking.NoticeWindow).AddDate(0, 0, 1)
	lastDay := firstDay.AddDate(0, 0, 13)

	inserted, err := slotService.GenerateCalendar(slots.GenerateCalendarRequest{
		StartDate: firstDay.Format("2006-01-02"),
		EndDate:   lastDay.Format("2006-01-02"),
	})
	if err != nil {
		return fmt.Errorf("failed to generate calendar: %w", err)
	}

	fmt.Printf("    ✅ Created %d slots (%s to %s, %v each, capacity %d)\n",
		inserted,
		firstDay.Format("2006-01-02"),
		lastDay.Format("2006-01-02"),
		s.cfg.Booking.SlotDuration,
		s.cfg.Booking.SlotCapacity,
	)

	return nil
}
