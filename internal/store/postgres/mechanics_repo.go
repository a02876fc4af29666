package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"carfixer/backend/internal/domain"
)

type MechanicRepo struct {
	db *bun.DB
}

func NewMechanicRepo(db *bun.DB) *MechanicRepo {
	return &MechanicRepo{db: db}
}

// UpsertMechanic inserts m, or overwrites name and photo when m.ID already
// exists. The id sequence is moved past any explicit id so later inserts
// without one do not collide.
func (r *MechanicRepo) UpsertMechanic(ctx context.Context, m domain.Mechanic) (domain.Mechanic, error) {
	out := domain.Mechanic{ID: m.ID, Name: m.Name, PhotoURL: m.PhotoURL}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewInsert().Model(&out)
		if out.ID > 0 {
			q = q.On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("photo_url = EXCLUDED.photo_url")
		}
		if _, err := q.Returning("id").Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewRaw(
			"SELECT setval(pg_get_serial_sequence('mechanics', 'id'), GREATEST((SELECT MAX(id) FROM mechanics), 1))",
		).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.Mechanic{}, err
	}
	return out, nil
}
