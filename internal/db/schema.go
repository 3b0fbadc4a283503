package db

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id             UUID PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	name           TEXT NOT NULL,
	photo_url      TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	availability   TEXT NOT NULL DEFAULT '',
	skills_offered JSONB NOT NULL DEFAULT '[]',
	skills_wanted  JSONB NOT NULL DEFAULT '[]',
	is_public      BOOLEAN NOT NULL DEFAULT TRUE,
	role           TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	is_banned      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS swap_requests (
	id            UUID PRIMARY KEY,
	from_user_id  UUID NOT NULL REFERENCES users(id),
	to_user_id    UUID NOT NULL REFERENCES users(id),
	skill_offered TEXT NOT NULL,
	skill_wanted  TEXT NOT NULL,
	message       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	CHECK (from_user_id <> to_user_id)
);

CREATE INDEX IF NOT EXISTS idx_swap_requests_from_user ON swap_requests(from_user_id);
CREATE INDEX IF NOT EXISTS idx_swap_requests_to_user ON swap_requests(to_user_id);

CREATE TABLE IF NOT EXISTS chat_rooms (
	id         UUID PRIMARY KEY,
	user1_id   UUID NOT NULL REFERENCES users(id),
	user2_id   UUID NOT NULL REFERENCES users(id),
	request_id UUID NOT NULL UNIQUE REFERENCES swap_requests(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_rooms_user1 ON chat_rooms(user1_id);
CREATE INDEX IF NOT EXISTS idx_chat_rooms_user2 ON chat_rooms(user2_id);

CREATE TABLE IF NOT EXISTS messages (
	seq          BIGSERIAL PRIMARY KEY,
	id           UUID NOT NULL UNIQUE,
	chat_room_id UUID NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
	sender_id    UUID NOT NULL REFERENCES users(id),
	text         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_order ON messages(chat_room_id, created_at, seq);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	name           TEXT NOT NULL,
	photo_url      TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	availability   TEXT NOT NULL DEFAULT '',
	skills_offered TEXT NOT NULL DEFAULT '[]',
	skills_wanted  TEXT NOT NULL DEFAULT '[]',
	is_public      BOOLEAN NOT NULL DEFAULT 1,
	role           TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	is_banned      BOOLEAN NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS swap_requests (
	id            TEXT PRIMARY KEY,
	from_user_id  TEXT NOT NULL REFERENCES users(id),
	to_user_id    TEXT NOT NULL REFERENCES users(id),
	skill_offered TEXT NOT NULL,
	skill_wanted  TEXT NOT NULL,
	message       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	CHECK (from_user_id <> to_user_id)
);

CREATE INDEX IF NOT EXISTS idx_swap_requests_from_user ON swap_requests(from_user_id);
CREATE INDEX IF NOT EXISTS idx_swap_requests_to_user ON swap_requests(to_user_id);

CREATE TABLE IF NOT EXISTS chat_rooms (
	id         TEXT PRIMARY KEY,
	user1_id   TEXT NOT NULL REFERENCES users(id),
	user2_id   TEXT NOT NULL REFERENCES users(id),
	request_id TEXT NOT NULL UNIQUE REFERENCES swap_requests(id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_rooms_user1 ON chat_rooms(user1_id);
CREATE INDEX IF NOT EXISTS idx_chat_rooms_user2 ON chat_rooms(user2_id);

CREATE TABLE IF NOT EXISTS messages (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
	sender_id    TEXT NOT NULL REFERENCES users(id),
	text         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_order ON messages(chat_room_id, created_at, seq);
`
