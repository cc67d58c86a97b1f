package database

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		icon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		short_desc TEXT NOT NULL DEFAULT '',
		current_price TEXT,
		original_price TEXT,
		discount INTEGER,
		currency TEXT NOT NULL DEFAULT 'INR',
		primary_image TEXT NOT NULL DEFAULT '',
		product_url TEXT NOT NULL DEFAULT '',
		affiliate_url TEXT NOT NULL DEFAULT '',
		coupon TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'DRAFT',
		category_id TEXT REFERENCES categories(id),
		is_expired BOOLEAN NOT NULL DEFAULT 0,
		expires_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_products (
		id TEXT PRIMARY KEY,
		asin TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		current_price TEXT,
		original_price TEXT,
		currency TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		product_url TEXT NOT NULL DEFAULT '',
		features TEXT NOT NULL DEFAULT '[]',
		deal_id TEXT REFERENCES deals(id) ON DELETE SET NULL,
		last_checked_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_logs (
		id TEXT PRIMARY KEY,
		network_id TEXT,
		type TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		token TEXT NOT NULL DEFAULT '',
		target TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notification_rules (
		id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		message_template TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_configs (
		id TEXT PRIMARY KEY,
		access_key TEXT NOT NULL,
		secret_key TEXT NOT NULL,
		associate_tag TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT 'in',
		marketplace TEXT NOT NULL DEFAULT 'IN',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_amazon_products_deal ON amazon_products(deal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_type_action ON sync_logs(type, action, created_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		icon TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		short_desc TEXT NOT NULL DEFAULT '',
		current_price NUMERIC(12,2),
		original_price NUMERIC(12,2),
		discount INTEGER,
		currency TEXT NOT NULL DEFAULT 'INR',
		primary_image TEXT NOT NULL DEFAULT '',
		product_url TEXT NOT NULL DEFAULT '',
		affiliate_url TEXT NOT NULL DEFAULT '',
		coupon TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'DRAFT',
		category_id TEXT REFERENCES categories(id),
		is_expired BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_products (
		id TEXT PRIMARY KEY,
		asin TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		current_price NUMERIC(12,2),
		original_price NUMERIC(12,2),
		currency TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		product_url TEXT NOT NULL DEFAULT '',
		features TEXT NOT NULL DEFAULT '[]',
		deal_id TEXT REFERENCES deals(id) ON DELETE SET NULL,
		last_checked_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_logs (
		id TEXT PRIMARY KEY,
		network_id TEXT,
		type TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		token TEXT NOT NULL DEFAULT '',
		target TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notification_rules (
		id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		message_template TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS amazon_configs (
		id TEXT PRIMARY KEY,
		access_key TEXT NOT NULL,
		secret_key TEXT NOT NULL,
		associate_tag TEXT NOT NULL,
		region TEXT NOT NULL DEFAULT 'in',
		marketplace TEXT NOT NULL DEFAULT 'IN',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_amazon_products_deal ON amazon_products(deal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_type_action ON sync_logs(type, action, created_at)`,
}
