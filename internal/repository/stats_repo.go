package repository

import "context"

type PlatformCounts struct {
	Users     int `json:"users"`
	Tutors    int `json:"tutors"`
	Bookings  int `json:"bookings"`
	Reviews   int `json:"reviews"`
	Completed int `json:"completed_bookings"`
}

type StatsRepository struct {
	db DBTX
}

func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) PlatformCounts(ctx context.Context) (*PlatformCounts, error) {
	query := `
		SELECT (SELECT COUNT(*) FROM users),
			   (SELECT COUNT(*) FROM tutor_profiles),
			   (SELECT COUNT(*) FROM bookings),
			   (SELECT COUNT(*) FROM reviews),
			   (SELECT COUNT(*) FROM bookings WHERE status = 'COMPLETED')
	`
	var counts PlatformCounts
	err := r.db.QueryRow(ctx, query).Scan(
		&counts.Users,
		&counts.Tutors,
		&counts.Bookings,
		&counts.Reviews,
		&counts.Completed,
	)
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
