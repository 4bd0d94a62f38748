package main

import (
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/domain"
	"carrental/internal/pkg/logger"
)

var makes = map[string][]string{
	"Toyota":     {"Camry", "Corolla", "RAV4", "Land Cruiser"},
	"Hyundai":    {"Elantra", "Sonata", "Tucson"},
	"Kia":        {"Rio", "Sportage", "K5"},
	"Volkswagen": {"Golf", "Passat", "Tiguan"},
	"Tesla":      {"Model 3", "Model Y"},
}

var (
	bodyTypes         = []string{"sedan", "hatchback", "suv", "wagon", "coupe", "minivan"}
	transmissionTypes = []string{"manual", "automatic", "cvt", "robot"}
	motorTypes        = []string{"petrol", "diesel", "hybrid", "electric"}
	cities            = []string{"Almaty", "Astana", "Shymkent"}
	// центры городов, машины разбрасываются вокруг них
	cityCenters = map[string][2]float64{
		"Almaty":   {43.2383, 76.9456},
		"Astana":   {51.1694, 71.4491},
		"Shymkent": {42.3417, 69.5901},
	}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDevelopment().Fatal("load config", map[string]interface{}{"error": err.Error()})
	}
	log := logger.New(cfg.Logger.Level, "console", "stdout")

	db, err := database.Connect(cfg.Database.URL, database.Options{}, log)
	if err != nil {
		log.Fatal("DB connection failed", map[string]interface{}{"error": err.Error()})
	}
	defer database.Close(db)

	log.Info("running migrations")
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed", map[string]interface{}{"error": err.Error()})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		modelIDs, err := seedCatalog(tx)
		if err != nil {
			return err
		}
		bodyIDs, err := seedNamed(tx, bodyTypes, func(n string) interface{} { return &domain.BodyType{Name: n} }, &domain.BodyType{})
		if err != nil {
			return err
		}
		transIDs, err := seedNamed(tx, transmissionTypes, func(n string) interface{} { return &domain.TransmissionType{Name: n} }, &domain.TransmissionType{})
		if err != nil {
			return err
		}
		motorIDs, err := seedNamed(tx, motorTypes, func(n string) interface{} { return &domain.MotorType{Name: n} }, &domain.MotorType{})
		if err != nil {
			return err
		}

		if _, err := seedUser(tx, "admin@carrental.local", "admin12345", "Administrator", domain.RoleAdmin); err != nil {
			return err
		}
		log.Info("admin ready: admin@carrental.local / admin12345")

		var owners []*domain.User
		for i := 1; i <= 3; i++ {
			u, err := seedUser(tx, fmt.Sprintf("owner%d@carrental.local", i), "owner12345", fmt.Sprintf("Owner %d", i), domain.RoleUser)
			if err != nil {
				return err
			}
			owners = append(owners, u)
		}
		for i := 1; i <= 3; i++ {
			if _, err := seedUser(tx, fmt.Sprintf("renter%d@carrental.local", i), "renter12345", fmt.Sprintf("Renter %d", i), domain.RoleUser); err != nil {
				return err
			}
		}

		var existing int64
		if err := tx.Model(&domain.Car{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			log.Info("cars already seeded", map[string]interface{}{"count": existing})
			return nil
		}

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 15; i++ {
			city := cities[rng.Intn(len(cities))]
			center := cityCenters[city]
			lat := center[0] + (rng.Float64()-0.5)*0.1
			lon := center[1] + (rng.Float64()-0.5)*0.1
			car := &domain.Car{
				OwnerID:            owners[i%len(owners)].ID,
				ModelID:            modelIDs[rng.Intn(len(modelIDs))],
				BodyTypeID:         bodyIDs[rng.Intn(len(bodyIDs))],
				TransmissionTypeID: transIDs[rng.Intn(len(transIDs))],
				MotorTypeID:        motorIDs[rng.Intn(len(motorIDs))],
				Year:               2012 + rng.Intn(13),
				PricePerDay:        float64(20 + rng.Intn(16)*5),
				City:               city,
				Latitude:           &lat,
				Longitude:          &lon,
				Description:        "Well maintained, non-smoking.",
				IsListed:           true,
			}
			if err := tx.Create(car).Error; err != nil {
				return fmt.Errorf("create car: %w", err)
			}
		}
		log.Info("cars created", map[string]interface{}{"count": 15})
		return nil
	})
	if err != nil {
		log.Fatal("seed failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("seed completed")
}

func seedCatalog(tx *gorm.DB) ([]int64, error) {
	var ids []int64
	for makeName, models := range makes {
		mk := domain.CarMake{Name: makeName}
		if err := tx.Where(domain.CarMake{Name: makeName}).FirstOrCreate(&mk).Error; err != nil {
			return nil, fmt.Errorf("make %s: %w", makeName, err)
		}
		for _, name := range models {
			m := domain.CarModel{MakeID: mk.ID, Name: name}
			if err := tx.Where(domain.CarModel{MakeID: mk.ID, Name: name}).FirstOrCreate(&m).Error; err != nil {
				return nil, fmt.Errorf("model %s %s: %w", makeName, name, err)
			}
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// seedNamed inserts lookup rows by unique name, skipping ones that exist, and
// returns every id in the table.
func seedNamed(tx *gorm.DB, names []string, build func(string) interface{}, model interface{}) ([]int64, error) {
	for _, n := range names {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(build(n)).Error; err != nil {
			return nil, fmt.Errorf("seed %s: %w", n, err)
		}
	}
	var ids []int64
	if err := tx.Model(model).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func seedUser(tx *gorm.DB, email, password, name string, role domain.UserRole) (*domain.User, error) {
	var u domain.User
	err := tx.Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u = domain.User{Email: email, PasswordHash: string(hash), Name: name, Role: role}
	if err := tx.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return &u, nil
}
