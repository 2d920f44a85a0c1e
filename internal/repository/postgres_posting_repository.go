package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"classifieds/internal/database"
	"classifieds/internal/domain/posting"
	"classifieds/internal/search"

	"github.com/google/uuid"
)

const postingColumnList = `p.id, p.kind, p.owner_id,
	p.title, p.description, p.city, p.region, p.address, p.contact_email, p.contact_phone,
	p.price, p.price_max, p.currency, p.property_type, p.listing_type, p.bedrooms, p.bathrooms,
	p.area_sqm, p.room_type, p.gender_restriction, p.available_from, p.amenities,
	p.role, p.company_name, p.job_type, p.work_mode, p.requirements, p.benefits,
	p.salary_min, p.salary_max, p.salary_currency, p.salary_period, p.application_deadline,
	p.status, p.moderation_status, p.moderated_by, p.moderated_at, p.moderation_notes,
	p.views, p.application_count, p.version, p.created_at, p.updated_at`

type PostgresPostingRepository struct {
	db database.DB
}

func NewPostgresPostingRepository(db database.DB) *PostgresPostingRepository {
	return &PostgresPostingRepository{db: db}
}

func (r *PostgresPostingRepository) Insert(ctx context.Context, p posting.Posting) error {
	c := p.Content
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO postings (
			id, kind, owner_id,
			title, description, city, region, address, contact_email, contact_phone,
			price, price_max, currency, property_type, listing_type, bedrooms, bathrooms,
			area_sqm, room_type, gender_restriction, available_from, amenities,
			role, company_name, job_type, work_mode, requirements, benefits,
			salary_min, salary_max, salary_currency, salary_period, application_deadline,
			status, moderation_status, moderated_by, moderated_at, moderation_notes,
			views, application_count, version, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33,
			$34, $35, $36, $37, $38,
			0, 0, $39, $40, $41
		)`,
		p.ID, string(p.Kind), p.OwnerID,
		c.Title, c.Description, c.City, c.Region, c.Address, c.ContactEmail, c.ContactPhone,
		c.Price, c.PriceMax, c.Currency, c.PropertyType, c.ListingType, c.Bedrooms, c.Bathrooms,
		c.AreaSqm, c.RoomType, c.GenderRestriction, c.AvailableFrom, amenities,
		c.Role, c.CompanyName, c.JobType, c.WorkMode, c.Requirements, c.Benefits,
		c.SalaryMin, c.SalaryMax, c.SalaryCurrency, c.SalaryPeriod, c.ApplicationDeadline,
		string(p.Status), string(p.ModerationStatus), p.ModeratedBy, p.ModeratedAt, p.ModerationNotes,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostgresPostingRepository) FindByID(ctx context.Context, kind posting.Kind, id uuid.UUID) (posting.Posting, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+postingColumnList+` FROM postings p WHERE p.id = $1 AND p.kind = $2`,
		id, string(kind),
	)
	p, err := scanPosting(row)
	if err != nil {
		if isNoRows(err) {
			return posting.Posting{}, ErrPostingNotFound
		}
		return posting.Posting{}, err
	}

	reports, err := r.reportsByPostingIDs(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return posting.Posting{}, err
	}
	p.Reports = reports[p.ID]
	return p, nil
}

func (r *PostgresPostingRepository) Find(ctx context.Context, q search.Query) ([]posting.Posting, int64, error) {
	b := &sqlBuilder{}
	where, err := r.scopedWhere(b, q.Kind, q.Filter)
	if err != nil {
		return nil, 0, err
	}
	order, err := b.orderBy(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM postings p WHERE `+where, b.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []posting.Posting{}, 0, nil
	}

	args := append(append([]any{}, b.args...), q.Page.Limit, q.Page.Offset())
	n := len(b.args)
	rows, err := r.db.Query(ctx,
		`SELECT `+postingColumnList+`
		 FROM postings p
		 WHERE `+where+`
		 ORDER BY `+order+`
		 LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]posting.Posting, 0, q.Page.Limit)
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	reports, err := r.reportsByPostingIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Reports = reports[out[i].ID]
	}
	return out, total, nil
}

func (r *PostgresPostingRepository) Count(ctx context.Context, kind posting.Kind, filter search.And) (int64, error) {
	b := &sqlBuilder{}
	where, err := r.scopedWhere(b, kind, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM postings p WHERE `+where, b.args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresPostingRepository) scopedWhere(b *sqlBuilder, kind posting.Kind, filter search.And) (string, error) {
	kindClause := "p.kind = " + b.arg(string(kind))
	where, err := b.where(filter)
	if err != nil {
		return "", err
	}
	return kindClause + " AND " + where, nil
}

func (r *PostgresPostingRepository) UpdateContent(ctx context.Context, kind posting.Kind, id uuid.UUID, expectedVersion int64, upd ContentUpdate) error {
	c := upd.Content
	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	var moderation *string
	if upd.ModerationStatus != nil {
		s := string(*upd.ModerationStatus)
		moderation = &s
	}

	n, err := r.db.Exec(ctx,
		`UPDATE postings SET
			title = $4, description = $5, city = $6, region = $7, address = $8,
			contact_email = $9, contact_phone = $10,
			price = $11, price_max = $12, currency = $13, property_type = $14, listing_type = $15,
			bedrooms = $16, bathrooms = $17, area_sqm = $18, room_type = $19,
			gender_restriction = $20, available_from = $21, amenities = $22,
			role = $23, company_name = $24, job_type = $25, work_mode = $26,
			requirements = $27, benefits = $28, salary_min = $29, salary_max = $30,
			salary_currency = $31, salary_period = $32, application_deadline = $33,
			moderation_status = COALESCE($34, moderation_status),
			updated_at = $35,
			version = version + 1
		 WHERE id = $1 AND kind = $2 AND version = $3`,
		id, string(kind), expectedVersion,
		c.Title, c.Description, c.City, c.Region, c.Address,
		c.ContactEmail, c.ContactPhone,
		c.Price, c.PriceMax, c.Currency, c.PropertyType, c.ListingType,
		c.Bedrooms, c.Bathrooms, c.AreaSqm, c.RoomType,
		c.GenderRestriction, c.AvailableFrom, amenities,
		c.Role, c.CompanyName, c.JobType, c.WorkMode,
		c.Requirements, c.Benefits, c.SalaryMin, c.SalaryMax,
		c.SalaryCurrency, c.SalaryPeriod, c.ApplicationDeadline,
		moderation,
		upd.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	exists, err := r.exists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPostingNotFound
	}
	return ErrVersionConflict
}

func (r *PostgresPostingRepository) SetModeration(ctx context.Context, kind posting.Kind, ids []uuid.UUID, d posting.Decision) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var coupled *string
	if d.CoupledStatus != nil {
		s := string(*d.CoupledStatus)
		coupled = &s
	}
	return r.db.Exec(ctx,
		`UPDATE postings SET
			moderation_status = $3,
			moderated_by = $4,
			moderated_at = $5,
			moderation_notes = COALESCE($6, moderation_notes),
			status = COALESCE($7, status),
			updated_at = $5,
			version = version + 1
		 WHERE kind = $1 AND id = ANY($2)`,
		string(kind), ids, string(d.Status), d.By, d.At, d.Notes, coupled,
	)
}

func (r *PostgresPostingRepository) SetStatus(ctx context.Context, kind posting.Kind, id uuid.UUID, status posting.Status, at time.Time) error {
	n, err := r.db.Exec(ctx,
		`UPDATE postings SET status = $3, updated_at = $4, version = version + 1 WHERE id = $1 AND kind = $2`,
		id, string(kind), string(status), at,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostingNotFound
	}
	return nil
}

func (r *PostgresPostingRepository) IncrementViews(ctx context.Context, kind posting.Kind, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `UPDATE postings SET views = views + 1 WHERE id = $1 AND kind = $2`, id, string(kind))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostingNotFound
	}
	return nil
}

func (r *PostgresPostingRepository) AddReport(ctx context.Context, kind posting.Kind, id uuid.UUID, rep posting.Report) error {
	n, err := r.db.Exec(ctx,
		`INSERT INTO posting_reports (id, posting_id, reported_by, reason, description, reported_at)
		 SELECT $1, p.id, $3, $4, $5, $6 FROM postings p WHERE p.id = $2 AND p.kind = $7
		 ON CONFLICT (posting_id, reported_by) DO NOTHING`,
		rep.ID, id, rep.ReportedBy, string(rep.Reason), rep.Description, rep.ReportedAt, string(kind),
	)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	exists, err := r.exists(ctx, kind, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrPostingNotFound
	}
	return ErrDuplicateReport
}

func (r *PostgresPostingRepository) Delete(ctx context.Context, kind posting.Kind, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM postings WHERE id = $1 AND kind = $2`, id, string(kind))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostingNotFound
	}
	return nil
}

func (r *PostgresPostingRepository) exists(ctx context.Context, kind posting.Kind, id uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM postings WHERE id = $1 AND kind = $2)`, id, string(kind))
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresPostingRepository) reportsByPostingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]posting.Report, error) {
	out := make(map[uuid.UUID][]posting.Report, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT posting_id, id, reported_by, reason, description, reported_at
		 FROM posting_reports
		 WHERE posting_id = ANY($1)
		 ORDER BY reported_at ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var postingID uuid.UUID
		var rep posting.Report
		var reason string
		if err := rows.Scan(&postingID, &rep.ID, &rep.ReportedBy, &reason, &rep.Description, &rep.ReportedAt); err != nil {
			return nil, err
		}
		rep.Reason = posting.ReportReason(reason)
		out[postingID] = append(out[postingID], rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPosting(row database.Row) (posting.Posting, error) {
	var (
		p                              posting.Posting
		kind, status, moderationStatus string
	)
	c := &p.Content
	err := row.Scan(
		&p.ID, &kind, &p.OwnerID,
		&c.Title, &c.Description, &c.City, &c.Region, &c.Address, &c.ContactEmail, &c.ContactPhone,
		&c.Price, &c.PriceMax, &c.Currency, &c.PropertyType, &c.ListingType, &c.Bedrooms, &c.Bathrooms,
		&c.AreaSqm, &c.RoomType, &c.GenderRestriction, &c.AvailableFrom, &c.Amenities,
		&c.Role, &c.CompanyName, &c.JobType, &c.WorkMode, &c.Requirements, &c.Benefits,
		&c.SalaryMin, &c.SalaryMax, &c.SalaryCurrency, &c.SalaryPeriod, &c.ApplicationDeadline,
		&status, &moderationStatus, &p.ModeratedBy, &p.ModeratedAt, &p.ModerationNotes,
		&p.Views, &p.ApplicationCount, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return posting.Posting{}, err
	}
	p.Kind = posting.Kind(kind)
	p.Status = posting.Status(status)
	p.ModerationStatus = posting.ModerationStatus(moderationStatus)
	return p, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, database.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}
