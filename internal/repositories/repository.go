package repositories

import (
	"gentrack/internal/database"
)

type Repository struct {
	User   UserRepository
	Venue  VenueRepository
	Genset GensetRepository
	Log    LogRepository
	Stats  StatsRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:   NewUserRepository(db), // user repo caches lookups for request auth
		Venue:  NewVenueRepository(db),
		Genset: NewGensetRepository(db),
		Log:    NewLogRepository(db),
		Stats:  NewStatsRepository(db),
	}
}
