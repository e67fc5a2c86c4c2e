package storage

const (
	initSchemaSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS sessions
(
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  DATETIME NOT NULL,
    device_type TEXT     NOT NULL,
    device_id   TEXT     NOT NULL,
    config      TEXT
);

CREATE TABLE IF NOT EXISTS samples
(
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  INTEGER  NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    timestamp   DATETIME NOT NULL,
    frequency   REAL     NOT NULL,
    bin_width   REAL     NOT NULL,
    power       REAL,
    num_samples INTEGER  NOT NULL
);`

	// indexes are built when the writer is closed; inserts stay cheap during capture
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_samples_session_time_freq ON samples (session_id, timestamp, frequency);
CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions (start_time);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      device_type,
                      device_id,
                      config)
VALUES (?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    device_type,
    device_id,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    device_type,
    device_id,
    config
FROM sessions
ORDER BY start_time, id`

	insertSamplesSQL = `
INSERT INTO samples (session_id,
                     timestamp,
                     frequency,
                     bin_width,
                     power,
                     num_samples)
VALUES `

	selectFilterValuesSQL = `
SELECT
    MIN(frequency),
    MAX(frequency),
    MIN(timestamp),
    MAX(timestamp)
FROM samples
WHERE session_id = ?`

	selectSamplesSQL = `
SELECT
    timestamp,
    frequency,
    power,
    bin_width,
    num_samples
FROM samples
WHERE
    session_id = ?
    AND timestamp BETWEEN ? AND ?
    AND frequency BETWEEN ? AND ?
ORDER BY timestamp, frequency`
)
