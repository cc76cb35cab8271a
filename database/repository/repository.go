package repository

import (
	billRepo "emireminder/database/repository/bill"
	preferenceRepo "emireminder/database/repository/preference"
	reminderRepo "emireminder/database/repository/reminder"
	userRepo "emireminder/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	BillRepository       = billRepo.BillRepository
	ReminderRepository   = reminderRepo.ReminderRepository
	PreferenceRepository = preferenceRepo.PreferenceRepository
	UserRepository       = userRepo.UserRepository
)

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Bills       BillRepository
	Reminders   ReminderRepository
	Preferences PreferenceRepository
	Users       UserRepository
}

// NewMongoRepositories wires the Mongo implementations against db.
func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Bills:       billRepo.NewMongoBillRepo(db),
		Reminders:   reminderRepo.NewMongoReminderRepo(db),
		Preferences: preferenceRepo.NewMongoPreferenceRepo(db),
		Users:       userRepo.NewMongoUserRepo(db),
	}
}
