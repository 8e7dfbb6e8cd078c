package postgres

const schema = `
-- Key-value table (one row per bucket, plus category metadata).
-- seq preserves first-insertion order for key listing.
CREATE TABLE IF NOT EXISTS kv (
    seq BIGSERIAL NOT NULL,
    key TEXT PRIMARY KEY,
    value JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_kv_seq ON kv(seq);
`
