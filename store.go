package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Store wraps the Postgres connection behind the attribute-record read
// contracts. Batch lookups issue exactly one query per attribute kind and
// return O(1) maps keyed by user id, so callers never join inside a loop.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// placeholders renders $start..$start+n-1 for an IN clause.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func idArgs(ids []int) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// GetIdentity returns one identity record or ErrNotFound.
func (s *Store) GetIdentity(ctx context.Context, id int) (*Identity, error) {
	m, err := s.GetIdentities(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	ident, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return &ident, nil
}

// GetIdentities batch-loads identity records. Ids without a live record
// are simply missing from the map; that is not an error.
func (s *Store) GetIdentities(ctx context.Context, ids []int) (map[int]Identity, error) {
	out := make(map[int]Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT id, email, full_name, gender, birth_date, created_at
		FROM users
		WHERE id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load identities", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ident Identity
		var birthDate sql.NullTime
		if err := rows.Scan(&ident.ID, &ident.Email, &ident.FullName, &ident.Gender, &birthDate, &ident.CreatedAt); err != nil {
			return nil, dependencyError("scan identity", err)
		}
		if birthDate.Valid {
			b := birthDate.Time
			ident.BirthDate = &b
		}
		out[ident.ID] = ident
	}
	return out, rows.Err()
}

// GetPersonals batch-loads personal records keyed by user id.
func (s *Store) GetPersonals(ctx context.Context, ids []int) (map[int]Personal, error) {
	out := make(map[int]Personal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT user_id, height_cm, weight_kg, religion, sub_caste, city, state, residency_status, marital_status
		FROM personals
		WHERE user_id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load personals", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Personal
		var height, weight sql.NullInt64
		var religion, subCaste, city, state, residency, marital sql.NullString
		if err := rows.Scan(&p.UserID, &height, &weight, &religion, &subCaste, &city, &state, &residency, &marital); err != nil {
			return nil, dependencyError("scan personal", err)
		}
		p.HeightCM = nullableInt(height)
		p.WeightKG = nullableInt(weight)
		p.Religion = nullableString(religion)
		p.SubCaste = nullableString(subCaste)
		p.City = nullableString(city)
		p.State = nullableString(state)
		p.ResidencyStatus = nullableString(residency)
		p.MaritalStatus = nullableString(marital)
		out[p.UserID] = p
	}
	return out, rows.Err()
}

// GetFamilies batch-loads family records keyed by user id.
func (s *Store) GetFamilies(ctx context.Context, ids []int) (map[int]Family, error) {
	out := make(map[int]Family, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT user_id, father_occupation, mother_occupation, siblings, family_type
		FROM families
		WHERE user_id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load families", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Family
		var father, mother, familyType sql.NullString
		var siblings sql.NullInt64
		if err := rows.Scan(&f.UserID, &father, &mother, &siblings, &familyType); err != nil {
			return nil, dependencyError("scan family", err)
		}
		f.FatherOccupation = nullableString(father)
		f.MotherOccupation = nullableString(mother)
		f.Siblings = nullableInt(siblings)
		f.FamilyType = nullableString(familyType)
		out[f.UserID] = f
	}
	return out, rows.Err()
}

// GetHealthRecords batch-loads health records keyed by user id.
func (s *Store) GetHealthRecords(ctx context.Context, ids []int) (map[int]Health, error) {
	out := make(map[int]Health, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT user_id, diet, alcohol, tobacco, hiv_status, conditions
		FROM health_records
		WHERE user_id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load health records", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h Health
		var diet, alcohol, tobacco, hiv, conditions sql.NullString
		if err := rows.Scan(&h.UserID, &diet, &alcohol, &tobacco, &hiv, &conditions); err != nil {
			return nil, dependencyError("scan health record", err)
		}
		h.Diet = nullableString(diet)
		h.Alcohol = nullableString(alcohol)
		h.Tobacco = nullableString(tobacco)
		h.HIVStatus = nullableString(hiv)
		h.Conditions = nullableString(conditions)
		out[h.UserID] = h
	}
	return out, rows.Err()
}

// GetEducations batch-loads education records keyed by user id.
func (s *Store) GetEducations(ctx context.Context, ids []int) (map[int]Education, error) {
	out := make(map[int]Education, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT user_id, highest_level, field_of_study
		FROM educations
		WHERE user_id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load educations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Education
		var level, field sql.NullString
		if err := rows.Scan(&e.UserID, &level, &field); err != nil {
			return nil, dependencyError("scan education", err)
		}
		e.HighestLevel = nullableString(level)
		e.FieldOfStudy = nullableString(field)
		out[e.UserID] = e
	}
	return out, rows.Err()
}

// GetProfessions batch-loads profession records keyed by user id.
func (s *Store) GetProfessions(ctx context.Context, ids []int) (map[int]Profession, error) {
	out := make(map[int]Profession, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`
		SELECT user_id, occupation, organization, income_band
		FROM professions
		WHERE user_id IN (%s)
	`, placeholders(1, len(ids)))
	rows, err := s.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, dependencyError("load professions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Profession
		var occupation, organization, income sql.NullString
		if err := rows.Scan(&p.UserID, &occupation, &organization, &income); err != nil {
			return nil, dependencyError("scan profession", err)
		}
		p.Occupation = nullableString(occupation)
		p.Organization = nullableString(organization)
		p.IncomeBand = nullableString(income)
		out[p.UserID] = p
	}
	return out, rows.Err()
}

// GetExpectations returns the seeker's preference record, or nil when the
// seeker never stored one. Absence is not an error.
func (s *Store) GetExpectations(ctx context.Context, id int) (*Expectations, error) {
	var e Expectations
	var ageFrom, ageTo sql.NullInt64
	var marital, alcohol sql.NullString
	var eduRaw, commRaw, countryRaw, stateRaw, profRaw, dietRaw []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, age_from, age_to, marital_status, alcohol_pref,
		       education_levels, communities, countries, states, professions, diets
		FROM expectations
		WHERE user_id = $1
	`, id).Scan(&e.UserID, &ageFrom, &ageTo, &marital, &alcohol,
		&eduRaw, &commRaw, &countryRaw, &stateRaw, &profRaw, &dietRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, dependencyError("load expectations", err)
	}

	e.AgeFrom = nullableInt(ageFrom)
	e.AgeTo = nullableInt(ageTo)
	e.MaritalStatus = nullableString(marital)
	e.AlcoholPref = nullableString(alcohol)
	e.EducationLevels = parseStringArray(eduRaw)
	e.Communities = parseStringArray(commRaw)
	e.Countries = parseStringArray(countryRaw)
	e.States = parseStringArray(stateRaw)
	e.Professions = parseStringArray(profRaw)
	e.Diets = parseStringArray(dietRaw)
	return &e, nil
}

// GetHealth returns one health record, or nil when absent.
func (s *Store) GetHealth(ctx context.Context, id int) (*Health, error) {
	m, err := s.GetHealthRecords(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if h, ok := m[id]; ok {
		return &h, nil
	}
	return nil, nil
}

// CountPendingInterests returns how many interest requests sent by the
// given user are still awaiting a response.
func (s *Store) CountPendingInterests(ctx context.Context, senderID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM interests WHERE sender_id = $1 AND status = 'pending'
	`, senderID).Scan(&n)
	if err != nil {
		return 0, dependencyError("count pending interests", err)
	}
	return n, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// parseStringArray decodes a jsonb string array, treating NULL, empty and
// malformed values all as "no preference".
func parseStringArray(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// touchLastOnline records activity for presence display. Failures are
// logged by callers; they never fail a request.
func (s *Store) touchLastOnline(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET last_online = NOW() WHERE id = $1", userID)
	return err
}
