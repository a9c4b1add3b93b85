package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/dbx"
	"github.com/dmitrijs2005/newsinsight/internal/fixtures"
)

// Seed loads the demo fixtures in one transaction. Rows that already exist
// are left alone, so seeding is idempotent.
func (b *Backend) Seed(ctx context.Context, now time.Time) error {
	set := fixtures.Load(now)

	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, a := range set.Accounts {
			hash, err := hashPassword(a.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", a.Email, err)
			}
			q := `INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, q, a.ID, a.Email, hash, now); err != nil {
				return err
			}
		}

		for _, p := range set.Profiles {
			q := `INSERT INTO user_profiles (id, email, username, trust_points, verifications_count, created_at, avatar_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, q, p.ID, p.Email, p.Username, p.TrustPoints, p.VerificationsCount, p.CreatedAt, p.AvatarURL); err != nil {
				return err
			}
		}

		for _, n := range set.News {
			q := `INSERT INTO news_items (id, title, content, source, verified, trust_score, category, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, q, n.ID, n.Title, n.Content, n.Source, n.Verified, n.TrustScore, n.Category, n.CreatedAt, n.UpdatedAt); err != nil {
				return err
			}
		}

		for _, m := range set.Metrics {
			q := `INSERT INTO trust_metrics (id, metric_name, score, timestamp) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, q, m.ID, m.MetricName, m.Score, m.Timestamp); err != nil {
				return err
			}
		}

		for _, r := range set.Rumors {
			q := `INSERT INTO rumors (id, content, source, status, trust_score, votes_count, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`
			if _, err := tx.ExecContext(ctx, q, r.ID, r.Content, r.Source, string(r.Status), r.TrustScore, r.VotesCount, r.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}
