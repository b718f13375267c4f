package database

import "strings"

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS users (
    id {{pk}},
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS item_requests (
    id {{pk}},
    description TEXT NOT NULL,
    requestor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS items (
    id {{pk}},
    name TEXT NOT NULL,
    description TEXT NOT NULL,
    available BOOLEAN NOT NULL,
    owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    request_id BIGINT REFERENCES item_requests(id) ON DELETE SET NULL
);
CREATE TABLE IF NOT EXISTS bookings (
    id {{pk}},
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'WAITING',
    CHECK (start_date < end_date)
);
CREATE TABLE IF NOT EXISTS comments (
    id {{pk}},
    text TEXT NOT NULL,
    item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id);
CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id);
CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id);
CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date);
CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id);
CREATE INDEX IF NOT EXISTS idx_item_requests_requestor_id ON item_requests(requestor_id)
`

// schemaFor renders the DDL statements for the given driver.
func schemaFor(driver string) []string {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	var queries []string
	for _, stmt := range strings.Split(strings.ReplaceAll(schemaTemplate, "{{pk}}", pk), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			queries = append(queries, stmt)
		}
	}
	return queries
}
