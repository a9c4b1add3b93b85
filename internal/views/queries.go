package views

import (
	"context"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/backend"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
	"github.com/dmitrijs2005/newsinsight/internal/realtime"
)

// MaxTrustMetrics bounds both the trust metrics query and the live view.
const MaxTrustMetrics = 10

// LeaderboardSize is the number of profiles on the leaderboard.
const LeaderboardSize = 10

func FetchNewsItems(ctx context.Context, c *backend.Client) ([]models.NewsItem, error) {
	res, err := c.From(models.TableNewsItems).Select("*").Order("created_at", query.Desc).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return query.Decode[models.NewsItem](res)
}

func FetchTrustMetrics(ctx context.Context, c *backend.Client) ([]models.TrustMetric, error) {
	res, err := c.From(models.TableTrustMetrics).Select("*").Order("timestamp", query.Desc).Limit(MaxTrustMetrics).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return query.Decode[models.TrustMetric](res)
}

func FetchLeaderboard(ctx context.Context, c *backend.Client) ([]models.UserProfile, error) {
	res, err := c.From(models.TableUserProfiles).Select("*").Order("trust_points", query.Desc).Limit(LeaderboardSize).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return query.Decode[models.UserProfile](res)
}

func FetchRumors(ctx context.Context, c *backend.Client) ([]models.Rumor, error) {
	res, err := c.From(models.TableRumors).Select("*").Order("created_at", query.Desc).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return query.Decode[models.Rumor](res)
}

// FetchProfile loads the profile of userID. A missing profile is reported
// as the structured Not found error.
func FetchProfile(ctx context.Context, c *backend.Client, userID string) (*models.UserProfile, error) {
	res, err := c.From(models.TableUserProfiles).Select("*").Eq("id", userID).Single().Execute(ctx)
	if err != nil {
		return nil, err
	}
	return query.DecodeOne[models.UserProfile](res)
}

// SubmitVerification records a user's verdict on a news item.
func SubmitVerification(ctx context.Context, c *backend.Client, newsID string, verified bool, userID string) (query.Result, error) {
	return c.From(models.TableVerifications).Insert(ctx, []models.Verification{{
		NewsItemID: newsID,
		UserID:     userID,
		IsVerified: verified,
		CreatedAt:  time.Now().UTC(),
	}})
}

// SubscribeToNewsUpdates delivers every change on news_items.
func SubscribeToNewsUpdates(c *backend.Client, h realtime.Handler) (realtime.Subscription, error) {
	return subscribeTable(c, realtime.ChannelNewsUpdates, models.TableNewsItems, h)
}

// SubscribeToTrustMetrics delivers every change on trust_metrics.
func SubscribeToTrustMetrics(c *backend.Client, h realtime.Handler) (realtime.Subscription, error) {
	return subscribeTable(c, realtime.ChannelTrustMetrics, models.TableTrustMetrics, h)
}

func subscribeTable(c *backend.Client, channel, table string, h realtime.Handler) (realtime.Subscription, error) {
	return c.Channel(channel).
		On(realtime.PostgresChanges, realtime.Filter{Event: realtime.EventAny, Schema: realtime.DefaultSchema, Table: table}, h).
		Subscribe()
}
