// Package analytics implements the fixed aggregation menu over the
// clickstream store: behavior dimensions, session segmentation, the
// conversion funnel, geographic rollups, and product ranking.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// Canonical tier names for the default segmentation boundaries.
var tierNames = []string{"Bouncers", "Browsers", "Engaged Users", "Active Users", "Power Users"}

// Service runs the canned aggregations. It holds no per-call state; every
// invocation re-reads from the store.
type Service struct {
	store clickstore.ClickStore
	cfg   *config.Config
}

// NewService creates an analytics Service over the given store.
func NewService(store clickstore.ClickStore, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Behavior runs the pre-written aggregation for the given dimension.
func (s *Service) Behavior(ctx context.Context, dimension string) (*clickstore.Result, error) {
	name, ok := dimensionTemplates[dimension]
	if !ok {
		available := make([]string, 0, len(dimensionTemplates))
		for d := range dimensionTemplates {
			available = append(available, d)
		}
		sort.Strings(available)
		return nil, errortypes.ValidationError(
			errors.New("unknown dimension "+dimension),
			"invalid analyze_user_behavior request").
			WithField("available", strings.Join(available, ", "))
	}
	return s.store.Query(ctx, Templates[name], s.cfg.Query.MaxRows)
}

// Segmentation buckets sessions into named tiers by total click count
// using the configured boundaries.
func (s *Service) Segmentation(ctx context.Context) ([]tools.SegmentTier, error) {
	bounds := s.cfg.Analytics.SegmentTiers
	if len(bounds) == 0 {
		bounds = config.DefaultSegmentTiers
	}

	var caseExpr strings.Builder
	caseExpr.WriteString("CASE\n")
	for i, bound := range bounds {
		fmt.Fprintf(&caseExpr, "WHEN total_clicks <= %d THEN '%s'\n", bound, tierLabel(i, bounds))
	}
	fmt.Fprintf(&caseExpr, "ELSE '%s'\nEND", tierLabel(len(bounds), bounds))

	query := fmt.Sprintf(`
		SELECT %s AS tier,
		       COUNT(*) AS sessions,
		       ROUND(AVG(total_clicks), 2) AS avg_clicks,
		       ROUND(AVG(unique_products_viewed), 2) AS avg_products,
		       ROUND(AVG(unique_categories_viewed), 2) AS avg_categories
		FROM user_sessions
		GROUP BY 1
		ORDER BY MIN(total_clicks)`, caseExpr.String())

	res, err := s.store.Query(ctx, query, 0)
	if err != nil {
		return nil, err
	}

	tiers := make([]tools.SegmentTier, 0, res.RowCount())
	for _, row := range res.Rows {
		tiers = append(tiers, tools.SegmentTier{
			Name:          asString(row[0]),
			Sessions:      asInt64(row[1]),
			AvgClicks:     asFloat64(row[2]),
			AvgProducts:   asFloat64(row[3]),
			AvgCategories: asFloat64(row[4]),
		})
	}
	return tiers, nil
}

// tierLabel names tier i for the given boundaries. The canonical names
// cover the default five tiers; other boundary counts get range labels.
func tierLabel(i int, bounds []int) string {
	if len(bounds)+1 == len(tierNames) {
		return tierNames[i]
	}
	lo := 1
	if i > 0 {
		lo = bounds[i-1] + 1
	}
	if i == len(bounds) {
		return fmt.Sprintf("%d+ clicks", lo)
	}
	if lo == bounds[i] {
		return fmt.Sprintf("%d click(s)", lo)
	}
	return fmt.Sprintf("%d-%d clicks", lo, bounds[i])
}

// ConversionFunnel computes, per step, the count of sessions reaching it.
// Steps are cumulative (a session reaches "Viewed Price" only through
// "Viewed Product"), so counts are non-increasing by construction.
func (s *Service) ConversionFunnel(ctx context.Context) ([]tools.FunnelStep, error) {
	const query = `
		WITH funnel_steps AS (
		    SELECT session_id,
		           MAX(CASE WHEN page_1_main_category != 'Unknown' THEN 1 ELSE 0 END) AS viewed_category,
		           MAX(CASE WHEN page_2_clothing_model != 'Unknown' THEN 1 ELSE 0 END) AS viewed_product,
		           MAX(CASE WHEN price > 0 THEN 1 ELSE 0 END) AS viewed_price
		    FROM clickstream
		    GROUP BY session_id
		)
		SELECT COUNT(*) AS all_sessions,
		       SUM(viewed_category) AS category_viewers,
		       SUM(CASE WHEN viewed_category = 1 AND viewed_product = 1 THEN 1 ELSE 0 END) AS product_viewers,
		       SUM(CASE WHEN viewed_category = 1 AND viewed_product = 1 AND viewed_price = 1 THEN 1 ELSE 0 END) AS price_viewers
		FROM funnel_steps`

	res, err := s.store.Query(ctx, query, 0)
	if err != nil {
		return nil, err
	}
	if res.RowCount() == 0 {
		return nil, errortypes.QueryError(errors.New("funnel query returned no rows"), "conversion funnel failed")
	}

	labels := []string{"All Sessions", "Viewed Category", "Viewed Product", "Viewed Price"}
	row := res.Rows[0]

	steps := make([]tools.FunnelStep, len(labels))
	for i, label := range labels {
		count := asInt64(row[i])
		step := tools.FunnelStep{Label: label, Count: count}
		if i > 0 {
			// Rate is count(N) / count(N-1); nil when the previous
			// step is empty, never a division fault.
			if prev := steps[i-1].Count; prev > 0 {
				rate := float64(count) * 100.0 / float64(prev)
				step.Rate = &rate
			}
		}
		steps[i] = step
	}
	return steps, nil
}

// Geographic returns per-country totals. The country column exists on both
// joined tables, so it is always qualified as cs.country; the clickstream
// side wins because the session rollup derives its country from it.
func (s *Service) Geographic(ctx context.Context) ([]tools.CountryStats, error) {
	const query = `
		SELECT cs.country,
		       COUNT(DISTINCT cs.session_id) AS sessions,
		       COUNT(*) AS clicks,
		       ROUND(AVG(us.total_clicks), 2) AS avg_session_length
		FROM clickstream cs
		JOIN user_sessions us ON cs.session_id = us.session_id
		GROUP BY cs.country
		ORDER BY sessions DESC`

	res, err := s.store.Query(ctx, query, 0)
	if err != nil {
		return nil, err
	}

	countries := make([]tools.CountryStats, 0, res.RowCount())
	for _, row := range res.Rows {
		countries = append(countries, tools.CountryStats{
			Country:          asString(row[0]),
			Sessions:         asInt64(row[1]),
			Clicks:           asInt64(row[2]),
			AvgSessionLength: asFloat64(row[3]),
		})
	}
	return countries, nil
}

// ProductPerformance returns per-product view/session/country counts and
// average price, ranked descending by views and cut at topN. A topN of 0
// means the configured default.
func (s *Service) ProductPerformance(ctx context.Context, topN int) ([]tools.ProductStats, error) {
	if topN < 0 {
		return nil, errortypes.ValidationError(
			fmt.Errorf("top_n must be positive, got %d", topN),
			"invalid product_performance request")
	}
	if topN == 0 {
		topN = s.cfg.Analytics.ProductTopN
	}

	query := fmt.Sprintf(`
		SELECT page_2_clothing_model AS product_code,
		       page_1_main_category AS category,
		       COUNT(*) AS views,
		       COUNT(DISTINCT session_id) AS sessions,
		       COUNT(DISTINCT country) AS countries,
		       ROUND(AVG(CASE WHEN price > 0 THEN price END), 2) AS avg_price
		FROM clickstream
		WHERE page_2_clothing_model != 'Unknown'
		GROUP BY page_2_clothing_model, page_1_main_category
		ORDER BY views DESC
		LIMIT %d`, topN)

	res, err := s.store.Query(ctx, query, 0)
	if err != nil {
		return nil, err
	}

	products := make([]tools.ProductStats, 0, res.RowCount())
	for _, row := range res.Rows {
		products = append(products, tools.ProductStats{
			ProductCode: asString(row[0]),
			Category:    asString(row[1]),
			Views:       asInt64(row[2]),
			Sessions:    asInt64(row[3]),
			Countries:   asInt64(row[4]),
			AvgPrice:    asFloat64(row[5]),
		})
	}
	return products, nil
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
