// Package sqlite implements the SQLite storage backend for fieldops.
// SQLite acts as the query engine; JSONL files in the data directory are the
// source of truth and are rewritten atomically after every mutation.
package sqlite

// Schema DDL for all tables.
const (
	createStages = `CREATE TABLE stages (
    stage_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    position INTEGER NOT NULL,
    color TEXT NOT NULL
);`

	createOpportunities = `CREATE TABLE opportunities (
    opportunity_id TEXT PRIMARY KEY,
    code TEXT NOT NULL,
    title TEXT NOT NULL,
    stage_id TEXT NOT NULL,
    producer_id TEXT,
    contact_id TEXT,
    farm_name TEXT,
    safra TEXT,
    activity_groups TEXT NOT NULL,
    total_value REAL NOT NULL,
    closing_probability INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    expected_closing_date TEXT,
    validity_date TEXT,
    last_movement_date TEXT NOT NULL,
    next_contact_date TEXT,
    conversation_history TEXT NOT NULL,
    description TEXT,
    internal_notes TEXT,
    generated_content TEXT
);`

	createProducers = `CREATE TABLE producers (
    producer_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    farm_name TEXT,
    email TEXT,
    phone TEXT,
    contacts TEXT,
    created_at TEXT NOT NULL
);`

	createProperties = `CREATE TABLE properties (
    property_id TEXT PRIMARY KEY,
    producer_id TEXT NOT NULL,
    name TEXT NOT NULL,
    city TEXT,
    state TEXT,
    area_hectares REAL,
    created_at TEXT NOT NULL
);`

	createVisits = `CREATE TABLE visits (
    visit_id TEXT PRIMARY KEY,
    producer_id TEXT NOT NULL,
    property_id TEXT,
    visit_date TEXT NOT NULL,
    summary TEXT,
    recommendations TEXT,
    created_at TEXT NOT NULL
);`

	createCatalogItems = `CREATE TABLE catalog_items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT,
    unit TEXT,
    price REAL NOT NULL,
    active INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL.
const (
	idxOpportunitiesStage = `CREATE INDEX idx_opportunities_stage ON opportunities(stage_id);`
	idxOpportunitiesSafra = `CREATE INDEX idx_opportunities_safra ON opportunities(safra);`
	idxStagesPosition     = `CREATE INDEX idx_stages_position ON stages(position);`
	idxPropertiesProducer = `CREATE INDEX idx_properties_producer ON properties(producer_id);`
	idxVisitsProducer     = `CREATE INDEX idx_visits_producer ON visits(producer_id);`
	idxCatalogActive      = `CREATE INDEX idx_catalog_active ON catalog_items(active);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createStages,
	createProducers,
	createProperties,
	createOpportunities,
	createVisits,
	createCatalogItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxOpportunitiesStage,
	idxOpportunitiesSafra,
	idxStagesPosition,
	idxPropertiesProducer,
	idxVisitsProducer,
	idxCatalogActive,
}
