package postgres

import (
	"database/sql"
	"time"

	"domaincheck/pkg/domain"

	"github.com/google/uuid"
)

type PgProject struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	Name         string         `db:"name"`
	ContactEmail sql.NullString `db:"contact_email"`
	State        string         `db:"state"`
	Error       sql.NullString `db:"error"`
	ParseErrors sql.NullString `db:"parse_errors"`

	CompletionNotified bool `db:"completion_notified"`

	CreatedAt   time.Time    `db:"created_at"   goqu:"skipinsert"`
	UpdatedAt   sql.NullTime `db:"updated_at"   goqu:"skipinsert"`
	CompletedAt sql.NullTime `db:"completed_at" goqu:"skipinsert"`
}

func (p *PgProject) ToDomain() *domain.Project {
	return &domain.Project{
		ID:                 domain.ProjectID(p.ID),
		UserID:             domain.UserID(p.UserID),
		Name:               p.Name,
		ContactEmail:       p.ContactEmail.String,
		State:              domain.ProjectState(p.State),
		Error:              p.Error.String,
		ParseErrors:        p.ParseErrors.String,
		CompletionNotified: p.CompletionNotified,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt.Time,
		CompletedAt:        p.CompletedAt.Time,
	}
}

func (p *PgProject) FromDomain(project domain.Project) {
	*p = PgProject{
		ID:     uuid.UUID(project.ID),
		UserID: uuid.UUID(project.UserID),
		Name:   project.Name,
		ContactEmail: sql.NullString{
			String: project.ContactEmail,
			Valid:  project.ContactEmail != "",
		},
		State: string(project.State),
		Error: sql.NullString{
			String: project.Error,
			Valid:  project.Error != "",
		},
		ParseErrors: sql.NullString{
			String: project.ParseErrors,
			Valid:  project.ParseErrors != "",
		},
		CompletionNotified: project.CompletionNotified,
		CreatedAt:          project.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  project.UpdatedAt,
			Valid: !project.UpdatedAt.IsZero(),
		},
		CompletedAt: sql.NullTime{
			Time:  project.CompletedAt,
			Valid: !project.CompletedAt.IsZero(),
		},
	}
}

type PgUploadedFile struct {
	ID        uuid.UUID `db:"id" goqu:"skipinsert"`
	ProjectID uuid.UUID `db:"project_id"`
	Filename  string    `db:"filename"`
	Data      string    `db:"data"`
}

func (f *PgUploadedFile) ToDomain() *domain.UploadedFile {
	return &domain.UploadedFile{
		ID:        f.ID,
		ProjectID: domain.ProjectID(f.ProjectID),
		Filename:  f.Filename,
		Data:      f.Data,
	}
}

func (f *PgUploadedFile) FromDomain(file domain.UploadedFile) {
	*f = PgUploadedFile{
		ID:        file.ID,
		ProjectID: uuid.UUID(file.ProjectID),
		Filename:  file.Filename,
		Data:      file.Data,
	}
}

type PgProjectDomain struct {
	ID        uuid.UUID `db:"id" goqu:"skipinsert"`
	ProjectID uuid.UUID `db:"project_id"`

	Domain       string         `db:"domain"`
	OriginalLink sql.NullString `db:"original_link"`

	IsChecked bool           `db:"is_checked"`
	State     string         `db:"state"`
	Error     sql.NullString `db:"error"`

	LastChecked sql.NullTime `db:"last_checked" goqu:"skipinsert"`
}

func (d *PgProjectDomain) ToDomain() *domain.ProjectDomain {
	return &domain.ProjectDomain{
		ID:           domain.DomainID(d.ID),
		ProjectID:    domain.ProjectID(d.ProjectID),
		Domain:       d.Domain,
		OriginalLink: d.OriginalLink.String,
		IsChecked:    d.IsChecked,
		State:        domain.DomainState(d.State),
		Error:        d.Error.String,
		LastChecked:  d.LastChecked.Time,
	}
}

func (d *PgProjectDomain) FromDomain(pd domain.ProjectDomain) {
	*d = PgProjectDomain{
		ID:        uuid.UUID(pd.ID),
		ProjectID: uuid.UUID(pd.ProjectID),
		Domain:    pd.Domain,
		OriginalLink: sql.NullString{
			String: pd.OriginalLink,
			Valid:  pd.OriginalLink != "",
		},
		IsChecked: pd.IsChecked,
		State:     string(pd.State),
		Error: sql.NullString{
			String: pd.Error,
			Valid:  pd.Error != "",
		},
		LastChecked: sql.NullTime{
			Time:  pd.LastChecked,
			Valid: !pd.LastChecked.IsZero(),
		},
	}
}

func domainsToPg(domains []domain.ProjectDomain) []PgProjectDomain {
	out := make([]PgProjectDomain, len(domains))
	for i := range out {
		out[i].FromDomain(domains[i])
	}

	return out
}

func pgDomainsToDomain(rows []PgProjectDomain) []domain.ProjectDomain {
	out := make([]domain.ProjectDomain, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}

type PgURLMetrics struct {
	ID             uuid.UUID    `db:"id" goqu:"skipinsert"`
	QueryURL       string       `db:"query_url"`
	LastUpdated    sql.NullTime `db:"last_updated"`
	ExtendedFromID *uuid.UUID   `db:"extended_from_id"`

	Title        *string `db:"title"`
	CanonicalURL *string `db:"canonical_url"`

	Subdomain  *string `db:"subdomain"`
	RootDomain *string `db:"root_domain"`

	ExternalLinks           *float64 `db:"external_links"`
	SubdomainExternalLinks  *int64   `db:"subdomain_external_links"`
	RootDomainExternalLinks *int64   `db:"root_domain_external_links"`
	EquityLinks             *float64 `db:"equity_links"`

	SubdomainsLinking            *int64   `db:"subdomains_linking"`
	RootDomainsLinking           *int64   `db:"root_domains_linking"`
	Links                        *float64 `db:"links"`
	SubdomainSubdomainsLinking   *int64   `db:"subdomain_subdomains_linking"`
	RootDomainRootDomainsLinking *int64   `db:"root_domain_root_domains_linking"`

	MozRank10            *float64 `db:"mozrank_10"`
	MozRankRaw           *float64 `db:"mozrank_raw"`
	SubdomainMozRank10   *float64 `db:"subdomain_mozrank_10"`
	SubdomainMozRankRaw  *float64 `db:"subdomain_mozrank_raw"`
	RootDomainMozRank10  *float64 `db:"root_domain_mozrank_10"`
	RootDomainMozRankRaw *float64 `db:"root_domain_mozrank_raw"`

	HTTPStatusCode  *int64   `db:"http_status_code"`
	PageAuthority   *float64 `db:"page_authority"`
	DomainAuthority *float64 `db:"domain_authority"`
}

func (m *PgURLMetrics) ToDomain() *domain.URLMetrics {
	out := &domain.URLMetrics{
		ID:          domain.MetricsID(m.ID),
		QueryURL:    m.QueryURL,
		LastUpdated: m.LastUpdated.Time,

		Title:        m.Title,
		CanonicalURL: m.CanonicalURL,
		Subdomain:    m.Subdomain,
		RootDomain:   m.RootDomain,

		ExternalLinks:           m.ExternalLinks,
		SubdomainExternalLinks:  m.SubdomainExternalLinks,
		RootDomainExternalLinks: m.RootDomainExternalLinks,
		EquityLinks:             m.EquityLinks,

		SubdomainsLinking:            m.SubdomainsLinking,
		RootDomainsLinking:           m.RootDomainsLinking,
		Links:                        m.Links,
		SubdomainSubdomainsLinking:   m.SubdomainSubdomainsLinking,
		RootDomainRootDomainsLinking: m.RootDomainRootDomainsLinking,

		MozRank10:            m.MozRank10,
		MozRankRaw:           m.MozRankRaw,
		SubdomainMozRank10:   m.SubdomainMozRank10,
		SubdomainMozRankRaw:  m.SubdomainMozRankRaw,
		RootDomainMozRank10:  m.RootDomainMozRank10,
		RootDomainMozRankRaw: m.RootDomainMozRankRaw,

		HTTPStatusCode:  m.HTTPStatusCode,
		PageAuthority:   m.PageAuthority,
		DomainAuthority: m.DomainAuthority,
	}
	if m.ExtendedFromID != nil {
		id := domain.MetricsID(*m.ExtendedFromID)
		out.ExtendedFromID = &id
	}

	return out
}

func (m *PgURLMetrics) FromDomain(um domain.URLMetrics) {
	*m = PgURLMetrics{
		ID:       uuid.UUID(um.ID),
		QueryURL: um.QueryURL,
		LastUpdated: sql.NullTime{
			Time:  um.LastUpdated,
			Valid: !um.LastUpdated.IsZero(),
		},

		Title:        um.Title,
		CanonicalURL: um.CanonicalURL,
		Subdomain:    um.Subdomain,
		RootDomain:   um.RootDomain,

		ExternalLinks:           um.ExternalLinks,
		SubdomainExternalLinks:  um.SubdomainExternalLinks,
		RootDomainExternalLinks: um.RootDomainExternalLinks,
		EquityLinks:             um.EquityLinks,

		SubdomainsLinking:            um.SubdomainsLinking,
		RootDomainsLinking:           um.RootDomainsLinking,
		Links:                        um.Links,
		SubdomainSubdomainsLinking:   um.SubdomainSubdomainsLinking,
		RootDomainRootDomainsLinking: um.RootDomainRootDomainsLinking,

		MozRank10:            um.MozRank10,
		MozRankRaw:           um.MozRankRaw,
		SubdomainMozRank10:   um.SubdomainMozRank10,
		SubdomainMozRankRaw:  um.SubdomainMozRankRaw,
		RootDomainMozRank10:  um.RootDomainMozRank10,
		RootDomainMozRankRaw: um.RootDomainMozRankRaw,

		HTTPStatusCode:  um.HTTPStatusCode,
		PageAuthority:   um.PageAuthority,
		DomainAuthority: um.DomainAuthority,
	}
	if um.ExtendedFromID != nil {
		id := uuid.UUID(*um.ExtendedFromID)
		m.ExtendedFromID = &id
	}
}

type PgProjectMetrics struct {
	ID        uuid.UUID `db:"id" goqu:"skipinsert"`
	ProjectID uuid.UUID `db:"project_id"`
	MetricsID uuid.UUID `db:"metrics_id"`

	IsChecked   bool `db:"is_checked"`
	IsExtension bool `db:"is_extension"`
}

func (l *PgProjectMetrics) ToDomain() *domain.ProjectMetrics {
	return &domain.ProjectMetrics{
		ID:          l.ID,
		ProjectID:   domain.ProjectID(l.ProjectID),
		MetricsID:   domain.MetricsID(l.MetricsID),
		IsChecked:   l.IsChecked,
		IsExtension: l.IsExtension,
	}
}

func (l *PgProjectMetrics) FromDomain(pm domain.ProjectMetrics) {
	*l = PgProjectMetrics{
		ID:          pm.ID,
		ProjectID:   uuid.UUID(pm.ProjectID),
		MetricsID:   uuid.UUID(pm.MetricsID),
		IsChecked:   pm.IsChecked,
		IsExtension: pm.IsExtension,
	}
}

func pgLinksToDomain(rows []PgProjectMetrics) []domain.ProjectMetrics {
	out := make([]domain.ProjectMetrics, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}

type PgTLD struct {
	Suffix            string         `db:"suffix"`
	IsRecognized      bool           `db:"is_recognized"`
	IsAPIRegisterable bool           `db:"is_api_registerable"`
	Type              string         `db:"type"`
	Description       sql.NullString `db:"description"`
}

func (t *PgTLD) ToDomain() domain.TLD {
	return domain.TLD{
		Suffix:            t.Suffix,
		IsRecognized:      t.IsRecognized,
		IsAPIRegisterable: t.IsAPIRegisterable,
		Type:              t.Type,
		Description:       t.Description.String,
	}
}

func (t *PgTLD) FromDomain(tld domain.TLD) {
	*t = PgTLD{
		Suffix:            tld.Suffix,
		IsRecognized:      tld.IsRecognized,
		IsAPIRegisterable: tld.IsAPIRegisterable,
		Type:              tld.Type,
		Description: sql.NullString{
			String: tld.Description,
			Valid:  tld.Description != "",
		},
	}
}

type PgSetting struct {
	Key     string         `db:"key"`
	Value   string         `db:"value"`
	Type    string         `db:"type"`
	Choices sql.NullString `db:"choices"`
}

func (s *PgSetting) ToDomain() domain.Setting {
	return domain.Setting{
		Key:     s.Key,
		Value:   s.Value,
		Type:    domain.SettingType(s.Type),
		Choices: s.Choices.String,
	}
}

type PgMetricsLastUpdate struct {
	Datetime  time.Time `db:"datetime"`
	Retrieved time.Time `db:"retrieved"`
}
