// Schema DDL for the document tables.
package sqlite

// Schema DDL for all tables. Statements are idempotent so Attach can run
// them against an existing document.
const (
	createBlocks = `CREATE TABLE IF NOT EXISTS blocks (
    block_id TEXT PRIMARY KEY,
    root_id TEXT NOT NULL,
    parent_id TEXT,
    link TEXT NOT NULL,
    slot TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    fields TEXT NOT NULL,
    x REAL,
    y REAL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES blocks(block_id) ON DELETE CASCADE
);`

	createSymbols = `CREATE TABLE IF NOT EXISTS symbols (
    symbol_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    symbol_type TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createFieldConstraints = `CREATE TABLE IF NOT EXISTS field_constraints (
    kind TEXT NOT NULL,
    field TEXT NOT NULL,
    PRIMARY KEY (kind, field)
);`

	createFieldOptions = `CREATE TABLE IF NOT EXISTS field_options (
    kind TEXT NOT NULL,
    field TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    option TEXT NOT NULL,
    PRIMARY KEY (kind, field, ordinal),
    FOREIGN KEY (kind, field) REFERENCES field_constraints(kind, field) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxBlocksRoot   = `CREATE INDEX IF NOT EXISTS idx_blocks_root ON blocks(root_id);`
	idxBlocksParent = `CREATE INDEX IF NOT EXISTS idx_blocks_parent ON blocks(parent_id);`
)

// Values of blocks.link: how a row hangs off its parent.
const (
	linkRoot   = "root"
	linkInput  = "input"
	linkShadow = "shadow"
	linkNext   = "next"
)

// schemaDDL lists all CREATE statements in dependency order.
var schemaDDL = []string{
	createBlocks,
	createSymbols,
	createFieldConstraints,
	createFieldOptions,
	idxBlocksRoot,
	idxBlocksParent,
}
