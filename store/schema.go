package store

// Parents are created before children, so the foreign keys resolve within a
// single load.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	prj_id TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS subjects (
	subj_id TEXT PRIMARY KEY,
	prj_id TEXT NOT NULL REFERENCES projects (prj_id),
	age INTEGER,
	sex TEXT,
	condition TEXT,
	treatment TEXT,
	response TEXT
);

CREATE TABLE IF NOT EXISTS samples (
	sample_id TEXT PRIMARY KEY,
	subj_id TEXT NOT NULL REFERENCES subjects (subj_id),
	time_from_treatment INTEGER,
	sample_type TEXT,
	b_cell_count INTEGER,
	cd8_t_cell_count INTEGER,
	cd4_t_cell_count INTEGER,
	nk_cell_count INTEGER,
	monocyte_count INTEGER
);

CREATE INDEX IF NOT EXISTS idx_samples_subj_id ON samples (subj_id);
`

const (
	insertProject = `INSERT OR IGNORE INTO projects (prj_id) VALUES (?)`

	insertSubject = `INSERT OR IGNORE INTO subjects (subj_id, prj_id, age, sex, condition, treatment, response) VALUES (?, ?, ?, ?, ?, ?, ?)`

	insertSample = `INSERT OR IGNORE INTO samples (sample_id, subj_id, time_from_treatment, sample_type, b_cell_count, cd8_t_cell_count, cd4_t_cell_count, nk_cell_count, monocyte_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectSampleCounts = `SELECT sample_id, b_cell_count, cd8_t_cell_count, cd4_t_cell_count, nk_cell_count, monocyte_count FROM samples ORDER BY sample_id`
)
