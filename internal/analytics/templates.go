package analytics

// Templates is the catalog of named query templates. It backs the
// /templates resource and the analyze_user_behavior dimensions. Config-only:
// nothing here is persisted in the store.
var Templates = map[string]string{
	"overview": `
		SELECT 'Total Clicks' AS metric, COUNT(*) AS value FROM clickstream
		UNION ALL
		SELECT 'Unique Sessions', COUNT(DISTINCT session_id) FROM clickstream
		UNION ALL
		SELECT 'Countries', COUNT(DISTINCT country) FROM clickstream
		UNION ALL
		SELECT 'Product Categories', COUNT(DISTINCT page_1_main_category)
		FROM clickstream WHERE page_1_main_category != 'Unknown'
		UNION ALL
		SELECT 'Unique Products', COUNT(DISTINCT page_2_clothing_model)
		FROM clickstream WHERE page_2_clothing_model != 'Unknown'`,

	"countries_by_sessions": `
		SELECT country, COUNT(*) AS sessions,
		       ROUND(AVG(total_clicks), 2) AS avg_clicks_per_session
		FROM user_sessions
		GROUP BY country
		ORDER BY sessions DESC
		LIMIT 10`,

	"top_products": `
		SELECT product_code, category, total_views, unique_sessions
		FROM product_analytics
		ORDER BY total_views DESC
		LIMIT 20`,

	"category_performance": `
		SELECT page_1_main_category AS category,
		       COUNT(*) AS total_views,
		       COUNT(DISTINCT session_id) AS unique_sessions,
		       COUNT(DISTINCT country) AS countries
		FROM clickstream
		WHERE page_1_main_category != 'Unknown'
		GROUP BY page_1_main_category
		ORDER BY total_views DESC`,

	"daily_activity": `
		SELECT day, COUNT(*) AS clicks,
		       COUNT(DISTINCT session_id) AS sessions
		FROM clickstream
		GROUP BY day
		ORDER BY day`,

	"session_length_distribution": `
		SELECT
		    CASE
		        WHEN total_clicks = 1 THEN '1 click'
		        WHEN total_clicks BETWEEN 2 AND 5 THEN '2-5 clicks'
		        WHEN total_clicks BETWEEN 6 AND 10 THEN '6-10 clicks'
		        WHEN total_clicks BETWEEN 11 AND 20 THEN '11-20 clicks'
		        ELSE '20+ clicks'
		    END AS session_length,
		    COUNT(*) AS session_count
		FROM user_sessions
		GROUP BY 1
		ORDER BY session_count DESC`,
}

// dimensionTemplates maps analyze_user_behavior dimensions onto templates.
var dimensionTemplates = map[string]string{
	"overview":       "overview",
	"country":        "countries_by_sessions",
	"product":        "top_products",
	"category":       "category_performance",
	"daily":          "daily_activity",
	"session_length": "session_length_distribution",
}
