package views

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
)

// NewsFeed lists news items newest first and follows news_updates.
type NewsFeed struct {
	*collection[models.NewsItem]
}

func NewNewsFeed(c *backend.Client, logger logging.Logger) *NewsFeed {
	return &NewsFeed{newCollection[models.NewsItem](c, logger, "news_feed", FetchNewsItems, SubscribeToNewsUpdates, applyNewsChange)}
}

// TrustMetrics lists the latest metrics and follows the trust_metrics
// channel, keeping at most MaxTrustMetrics entries.
type TrustMetrics struct {
	*collection[models.TrustMetric]
}

func NewTrustMetrics(c *backend.Client, logger logging.Logger) *TrustMetrics {
	return &TrustMetrics{newCollection[models.TrustMetric](c, logger, "trust_metrics", FetchTrustMetrics, SubscribeToTrustMetrics, applyMetricChange)}
}

// Leaderboard is a one-shot list of the top profiles by trust points.
type Leaderboard struct {
	*collection[models.UserProfile]
}

func NewLeaderboard(c *backend.Client, logger logging.Logger) *Leaderboard {
	return &Leaderboard{newCollection[models.UserProfile](c, logger, "leaderboard", FetchLeaderboard, nil, nil)}
}

// Rumors is a one-shot list of rumors, newest first.
type Rumors struct {
	*collection[models.Rumor]
}

func NewRumors(c *backend.Client, logger logging.Logger) *Rumors {
	return &Rumors{newCollection[models.Rumor](c, logger, "rumors", FetchRumors, nil, nil)}
}

type rowID struct {
	ID string `json:"id"`
}

// applyNewsChange prepends inserts, replaces updates by id and removes
// deletes by id.
func applyNewsChange(items []models.NewsItem, e realtime.ChangeEvent) ([]models.NewsItem, error) {
	switch e.EventType {
	case realtime.EventInsert:
		var item models.NewsItem
		if err := json.Unmarshal(e.New, &item); err != nil {
			return nil, fmt.Errorf("decode inserted news item: %w", err)
		}
		return append([]models.NewsItem{item}, items...), nil

	case realtime.EventUpdate:
		var item models.NewsItem
		if err := json.Unmarshal(e.New, &item); err != nil {
			return nil, fmt.Errorf("decode updated news item: %w", err)
		}
		out := make([]models.NewsItem, len(items))
		for i, it := range items {
			if it.ID == item.ID {
				it = item
			}
			out[i] = it
		}
		return out, nil

	case realtime.EventDelete:
		var old rowID
		if err := json.Unmarshal(e.Old, &old); err != nil {
			return nil, fmt.Errorf("decode deleted news item: %w", err)
		}
		out := make([]models.NewsItem, 0, len(items))
		for _, it := range items {
			if it.ID != old.ID {
				out = append(out, it)
			}
		}
		return out, nil
	}
	return items, nil
}

// applyMetricChange prepends inserts and trims to MaxTrustMetrics. Other
// events leave the list unchanged.
func applyMetricChange(metrics []models.TrustMetric, e realtime.ChangeEvent) ([]models.TrustMetric, error) {
	if e.EventType != realtime.EventInsert {
		return metrics, nil
	}
	var m models.TrustMetric
	if err := json.Unmarshal(e.New, &m); err != nil {
		return nil, fmt.Errorf("decode inserted trust metric: %w", err)
	}
	out := append([]models.TrustMetric{m}, metrics...)
	if len(out) > MaxTrustMetrics {
		out = out[:MaxTrustMetrics]
	}
	return out, nil
}
