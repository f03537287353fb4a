package session

import (
	"database/sql"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the session table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS storefront_sessions (
        "userId" INT PRIMARY KEY,
        name TEXT,
        email TEXT,
        phone TEXT,
        address TEXT,
        city TEXT,
        "postalCode" TEXT,
        "updatedAt" TEXT
    )`)
	return err
}

func (r *PostgresRepository) Get(userID int) (Profile, error) {
	var p Profile
	err := r.db.QueryRow(
		`SELECT "userId", name, email, phone, address, city, "postalCode", "updatedAt" FROM storefront_sessions WHERE "userId" = $1`,
		userID,
	).Scan(&p.UserID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Put(profile Profile) error {
	profile.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.Exec(
		`INSERT INTO storefront_sessions ("userId", name, email, phone, address, city, "postalCode", "updatedAt")
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
         ON CONFLICT ("userId") DO UPDATE SET
             name = EXCLUDED.name,
             email = EXCLUDED.email,
             phone = EXCLUDED.phone,
             address = EXCLUDED.address,
             city = EXCLUDED.city,
             "postalCode" = EXCLUDED."postalCode",
             "updatedAt" = EXCLUDED."updatedAt"`,
		profile.UserID, profile.Name, profile.Email, profile.Phone, profile.Address, profile.City, profile.PostalCode, profile.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(`DELETE FROM storefront_sessions WHERE "userId" = $1`, userID)
	return err
}
