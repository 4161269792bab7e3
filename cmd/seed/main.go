package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"busly/internal/coupons"
	"busly/internal/schedules"
	"busly/internal/seats"
	"busly/internal/shared/config"
	"busly/internal/shared/database"
	"busly/internal/users"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Busly Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("Database cleaned")

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payments",
		"booking_seats",
		"bookings",
		"coupons",
		"seats",
		"schedules",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data.
func (s *Seeder) SeedAll() error {
	if _, err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedSchedules(); err != nil {
		return fmt.Errorf("failed to seed schedules: %w", err)
	}

	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	return nil
}

// SeedUsers creates an admin and a couple of passenger accounts. All
// accounts use the password "qwerty".
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		phone     string
		role      users.Role
	}{
		{"admin", "Admin", "Busly", "admin@busly.vn", "+84901000001", users.RoleAdmin},
		{"user1", "Linh", "Nguyen", "linh.nguyen@example.com", "+84901000002", users.RoleUser},
		{"user2", "Minh", "Tran", "minh.tran@example.com", "+84901000003", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Phone:     userData.phone,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedSchedules creates upcoming trips with their seat maps.
func (s *Seeder) SeedSchedules() error {
	fmt.Println("  Seeding schedules...")

	departureBase := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	schedulesData := []struct {
		routeName    string
		origin       string
		destination  string
		busPlate     string
		departure    time.Time
		duration     time.Duration
		pricePerSeat int64
		seatCount    int
	}{
		{"HCMC Express", "Ho Chi Minh City", "Da Lat", "51B-123.45", departureBase, 7 * time.Hour, 350000, 36},
		{"Coastal Line", "Ho Chi Minh City", "Nha Trang", "51B-678.90", departureBase.Add(2 * time.Hour), 9 * time.Hour, 420000, 40},
		{"Mekong Sleeper", "Ho Chi Minh City", "Can Tho", "65A-246.80", departureBase.Add(26 * time.Hour), 4 * time.Hour, 180000, 24},
		{"Highland Night", "Da Nang", "Da Lat", "43A-135.79", departureBase.Add(50 * time.Hour), 12 * time.Hour, 520000, 32},
	}

	for _, scheduleData := range schedulesData {
		schedule := schedules.Schedule{
			ID:           uuid.New(),
			RouteName:    scheduleData.routeName,
			Origin:       scheduleData.origin,
			Destination:  scheduleData.destination,
			BusPlate:     scheduleData.busPlate,
			DepartureAt:  scheduleData.departure,
			ArrivalAt:    scheduleData.departure.Add(scheduleData.duration),
			PricePerSeat: scheduleData.pricePerSeat,
			SeatCount:    scheduleData.seatCount,
			Status:       schedules.StatusScheduled,
		}

		if err := s.db.PostgreSQL.Create(&schedule).Error; err != nil {
			return fmt.Errorf("failed to create schedule %s: %w", schedule.RouteName, err)
		}

		seatRows := make([]seats.Seat, 0, schedule.SeatCount)
		for _, label := range schedules.GenerateSeatLabels(schedule.SeatCount) {
			seatRows = append(seatRows, seats.Seat{
				ID:         uuid.New(),
				ScheduleID: schedule.ID,
				Label:      label,
			})
		}
		if err := s.db.PostgreSQL.Create(&seatRows).Error; err != nil {
			return fmt.Errorf("failed to create seats for %s: %w", schedule.RouteName, err)
		}

		fmt.Printf("    Created schedule: %s (%s -> %s, %d seats)\n",
			schedule.RouteName, schedule.Origin, schedule.Destination, schedule.SeatCount)
	}

	return nil
}

// SeedCoupons creates a few active discount codes.
func (s *Seeder) SeedCoupons() error {
	fmt.Println("  Seeding coupons...")

	now := time.Now()
	usageLimit := 100

	couponsData := []coupons.Coupon{
		{
			ID:              uuid.New(),
			Code:            "WELCOME10",
			Description:     "10% off your first trip",
			DiscountPercent: 10,
			MaxDiscount:     50000,
			ValidFrom:       now,
			ValidTo:         now.Add(90 * 24 * time.Hour),
			UsageLimit:      &usageLimit,
			Active:          true,
		},
		{
			ID:            uuid.New(),
			Code:          "TET50K",
			Description:   "50,000 VND off bookings over 300,000 VND",
			DiscountFixed: 50000,
			MinPurchase:   300000,
			ValidFrom:     now,
			ValidTo:       now.Add(30 * 24 * time.Hour),
			Active:        true,
		},
		{
			ID:              uuid.New(),
			Code:            "EXPIRED",
			Description:     "Expired test coupon",
			DiscountPercent: 20,
			ValidFrom:       now.Add(-60 * 24 * time.Hour),
			ValidTo:         now.Add(-30 * 24 * time.Hour),
			Active:          true,
		},
	}

	for i := range couponsData {
		if err := s.db.PostgreSQL.Create(&couponsData[i]).Error; err != nil {
			return fmt.Errorf("failed to create coupon %s: %w", couponsData[i].Code, err)
		}
		fmt.Printf("    Created coupon: %s\n", couponsData[i].Code)
	}

	return nil
}
