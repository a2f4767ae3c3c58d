package database

// Both dialects carry the same constraints: unique username and email,
// composite primary key on follow edges, no self-edges, cascading foreign
// keys back to users, and indexes on posts(created_at) and posts(user_id).

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(120) NOT NULL,
		password_hash VARCHAR(256) NOT NULL,
		about_me      VARCHAR(140),
		last_seen     TIMESTAMPTZ  NOT NULL,
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         BIGSERIAL PRIMARY KEY,
		body       VARCHAR(140) NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL,
		user_id    BIGINT       NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_created_at ON posts (created_at)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_user_id ON posts (user_id)`,
	`CREATE TABLE IF NOT EXISTS followers (
		follower_id BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		followed_id BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (follower_id, followed_id),
		CONSTRAINT followers_no_self_follow CHECK (follower_id <> followed_id)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_followers_followed_id ON followers (followed_id)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id          VARCHAR(36)  PRIMARY KEY,
		user_id     BIGINT       NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash  VARCHAR(64)  NOT NULL UNIQUE,
		expires_at  TIMESTAMPTZ  NOT NULL,
		created_at  TIMESTAMPTZ  NOT NULL,
		revoked_at  TIMESTAMPTZ,
		replaced_by VARCHAR(36),
		device_info TEXT,
		ip_address  VARCHAR(64)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_refresh_tokens_user_id ON refresh_tokens (user_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(120) NOT NULL,
		password_hash VARCHAR(256) NOT NULL,
		about_me      VARCHAR(140),
		last_seen     DATETIME     NOT NULL,
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		body       VARCHAR(140) NOT NULL,
		created_at DATETIME     NOT NULL,
		user_id    INTEGER      NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_created_at ON posts (created_at)`,
	`CREATE INDEX IF NOT EXISTS ix_posts_user_id ON posts (user_id)`,
	`CREATE TABLE IF NOT EXISTS followers (
		follower_id INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		followed_id INTEGER  NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  DATETIME NOT NULL,
		PRIMARY KEY (follower_id, followed_id),
		CONSTRAINT followers_no_self_follow CHECK (follower_id <> followed_id)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_followers_followed_id ON followers (followed_id)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id          VARCHAR(36) PRIMARY KEY,
		user_id     INTEGER     NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash  VARCHAR(64) NOT NULL UNIQUE,
		expires_at  DATETIME    NOT NULL,
		created_at  DATETIME    NOT NULL,
		revoked_at  DATETIME,
		replaced_by VARCHAR(36),
		device_info TEXT,
		ip_address  VARCHAR(64)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_refresh_tokens_user_id ON refresh_tokens (user_id)`,
}
