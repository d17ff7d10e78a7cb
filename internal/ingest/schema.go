// Package ingest builds the e-commerce database: schema creation, UCI
// clickstream CSV import (or generated sample data), and wholesale
// recomputation of the analytics rollup tables.
package ingest

// Schema statements, executed in order. clickstream uses AUTOINCREMENT,
// which makes SQLite maintain the sqlite_sequence table.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clickstream (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		order_sequence INTEGER NOT NULL,
		country TEXT NOT NULL,
		session_id INTEGER NOT NULL,
		page_1_main_category TEXT NOT NULL,
		page_2_clothing_model TEXT NOT NULL,
		colour TEXT NOT NULL,
		location INTEGER NOT NULL,
		model_photography TEXT NOT NULL,
		price REAL NOT NULL,
		price_2 REAL NOT NULL,
		page TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clickstream_session ON clickstream(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clickstream_country ON clickstream(country)`,
	`CREATE INDEX IF NOT EXISTS idx_clickstream_category ON clickstream(page_1_main_category)`,

	`CREATE TABLE IF NOT EXISTS user_sessions (
		session_id INTEGER PRIMARY KEY,
		country TEXT NOT NULL,
		start_date TEXT NOT NULL,
		total_clicks INTEGER NOT NULL,
		unique_products_viewed INTEGER NOT NULL,
		unique_categories_viewed INTEGER NOT NULL,
		session_duration_minutes REAL NOT NULL,
		converted INTEGER NOT NULL,
		total_value REAL NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS product_analytics (
		product_code TEXT NOT NULL,
		category TEXT NOT NULL,
		total_views INTEGER NOT NULL,
		unique_sessions INTEGER NOT NULL,
		countries TEXT NOT NULL,
		avg_price REAL,
		conversion_rate REAL NOT NULL,
		PRIMARY KEY (product_code, category)
	)`,

	`CREATE TABLE IF NOT EXISTS country_analytics (
		country TEXT PRIMARY KEY,
		total_sessions INTEGER NOT NULL,
		total_clicks INTEGER NOT NULL,
		avg_session_length REAL NOT NULL,
		conversion_rate REAL NOT NULL,
		popular_categories TEXT NOT NULL,
		total_revenue REAL NOT NULL
	)`,
}

// Rollup statements. Each table is cleared and rebuilt from clickstream in
// full; the rebuild runs inside one transaction so readers never observe a
// half-built rollup. Session duration has no timestamps to derive from, so
// click count stands in as a minutes proxy, matching avg_session_length.
var rollupStatements = []string{
	`DELETE FROM user_sessions`,
	`INSERT INTO user_sessions
		(session_id, country, start_date, total_clicks, unique_products_viewed,
		 unique_categories_viewed, session_duration_minutes, converted, total_value)
	SELECT
		session_id,
		MIN(country),
		DATE(MIN(year) || '-' || printf('%02d', MIN(month)) || '-' || printf('%02d', MIN(day))),
		COUNT(*),
		COUNT(DISTINCT CASE WHEN page_2_clothing_model != 'Unknown' THEN page_2_clothing_model END),
		COUNT(DISTINCT CASE WHEN page_1_main_category != 'Unknown' THEN page_1_main_category END),
		CAST(COUNT(*) AS REAL),
		MAX(CASE WHEN price > 0 AND page_2_clothing_model != 'Unknown' THEN 1 ELSE 0 END),
		SUM(CASE WHEN price > 0 THEN price ELSE 0 END)
	FROM clickstream
	GROUP BY session_id`,

	`DELETE FROM product_analytics`,
	`INSERT INTO product_analytics
		(product_code, category, total_views, unique_sessions, countries, avg_price, conversion_rate)
	SELECT
		page_2_clothing_model,
		page_1_main_category,
		COUNT(*),
		COUNT(DISTINCT session_id),
		GROUP_CONCAT(DISTINCT country),
		AVG(CASE WHEN price > 0 THEN price END),
		ROUND(CAST(COUNT(DISTINCT CASE WHEN price > 0 THEN session_id END) AS REAL)
			/ COUNT(DISTINCT session_id), 4)
	FROM clickstream
	WHERE page_2_clothing_model != 'Unknown'
	GROUP BY page_2_clothing_model, page_1_main_category`,

	`DELETE FROM country_analytics`,
	`INSERT INTO country_analytics
		(country, total_sessions, total_clicks, avg_session_length, conversion_rate,
		 popular_categories, total_revenue)
	SELECT
		country,
		COUNT(DISTINCT session_id),
		COUNT(*),
		ROUND(CAST(COUNT(*) AS REAL) / COUNT(DISTINCT session_id), 2),
		ROUND(CAST(COUNT(DISTINCT CASE WHEN price > 0 AND page_2_clothing_model != 'Unknown'
				THEN session_id END) AS REAL) / COUNT(DISTINCT session_id), 4),
		GROUP_CONCAT(DISTINCT CASE WHEN page_1_main_category != 'Unknown'
				THEN page_1_main_category END),
		SUM(CASE WHEN price > 0 THEN price ELSE 0 END)
	FROM clickstream
	GROUP BY country`,
}
