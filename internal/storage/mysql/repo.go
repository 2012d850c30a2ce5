package mysql

import (
	"context"
	"database/sql"
	"strings"

	"hotel_search/internal/domain"
)

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertHotels writes hs as one multi-row statement.
func (r *Repo) UpsertHotels(ctx context.Context, hs []domain.HotelRecord) error {
	if len(hs) == 0 {
		return nil
	}
	values := make([]string, 0, len(hs))
	args := make([]any, 0, len(hs)*14) // 14 params per row
	for _, h := range hs {
		values = append(values, hotelPlaceholders)
		args = append(args,
			h.ID,
			h.NameLocal,
			h.NameAlt,
			h.NameThird,
			h.CityLocal,
			h.CityAlt,
			h.Region,
			h.Address,
			h.Country,
			h.Popularity,
			h.PriceTier,
			h.StarRating,
			valF64(h.Lat),
			valF64(h.Lon),
		)
	}
	sqlStr := upsertHotelsPrefix + strings.Join(values, ",") + upsertHotelsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.HotelRecord, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		var h domain.HotelRecord
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&h.ID,
			&h.NameLocal, &h.NameAlt, &h.NameThird,
			&h.CityLocal, &h.CityAlt,
			&h.Region, &h.Address, &h.Country,
			&h.Popularity, &h.PriceTier, &h.StarRating,
			&lat, &lon,
		); err != nil {
			return nil, err
		}
		if lat.Valid && lon.Valid {
			la, lo := lat.Float64, lon.Float64
			h.Lat, h.Lon = &la, &lo
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
