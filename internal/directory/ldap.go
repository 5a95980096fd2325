package directory

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const defaultLDAPTimeout = 10 * time.Second

// LDAP reads members from an LDAP or Active Directory server.
// The user filter may contain the {tenant} and {user} placeholders.
type LDAP struct {
	cfg config.LDAP
}

// NewLDAP creates an LDAP directory. Empty attributes get defaults.
func NewLDAP(cfg config.LDAP) (*LDAP, error) {
	if cfg.URL == "" {
		return nil, config.ErrLDAPURLEmpty
	}

	if cfg.UserFilter == "" {
		cfg.UserFilter = "(&(objectClass=person)(o={tenant})(uid={user}))"
	}

	if cfg.RoleAttr == "" {
		cfg.RoleAttr = "employeeType"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLDAPTimeout
	}

	return &LDAP{cfg: cfg}, nil
}

// Lookup implements Directory.
func (l *LDAP) Lookup(ctx context.Context, tenantID, userID string) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := l.connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if l.cfg.BindDN != "" {
		if err = conn.Bind(l.cfg.BindDN, l.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	attrs := []string{l.cfg.RoleAttr}
	if l.cfg.ActiveAttr != "" {
		attrs = append(attrs, l.cfg.ActiveAttr)
	}

	searchRequest := ldap.NewSearchRequest(
		l.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		2, // more than one entry is an error anyway
		int(l.cfg.Timeout.Seconds()),
		false,
		buildFilter(l.cfg.UserFilter, tenantID, userID),
		attrs,
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil && !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	if result == nil || len(result.Entries) == 0 {
		return nil, ErrMemberNotFound
	}

	if len(result.Entries) > 1 {
		return nil, ErrMultipleMembers
	}

	return memberFromEntry(result.Entries[0], &l.cfg, tenantID, userID), nil
}

func (l *LDAP) connect() (*ldap.Conn, error) {
	opts := []ldap.DialOpt{
		ldap.DialWithDialer(&net.Dialer{Timeout: l.cfg.Timeout}),
	}

	u, err := url.Parse(l.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid LDAP url: %w", err)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: l.cfg.SkipVerify, //nolint:gosec // opt-in for lab setups
		ServerName:         u.Hostname(),
		MinVersion:         tls.VersionTLS12,
	}

	if u.Scheme == "ldaps" {
		opts = append(opts, ldap.DialWithTLSConfig(tlsConfig))
	}

	conn, err := ldap.DialURL(l.cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if u.Scheme != "ldaps" && l.cfg.StartTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	conn.SetTimeout(l.cfg.Timeout)

	return conn, nil
}

// buildFilter fills the filter placeholders with escaped values.
func buildFilter(tpl, tenantID, userID string) string {
	r := strings.NewReplacer(
		"{tenant}", ldap.EscapeFilter(tenantID),
		"{user}", ldap.EscapeFilter(userID),
	)

	return r.Replace(tpl)
}

// memberFromEntry maps a directory entry to a member.
// A missing role attribute means a regular member, a missing active attribute an active one.
func memberFromEntry(entry *ldap.Entry, cfg *config.LDAP, tenantID, userID string) *Member {
	role := strings.ToLower(strings.TrimSpace(entry.GetAttributeValue(cfg.RoleAttr)))
	if role == "" {
		role = models.MemberRoleMember
	}

	active := true

	if cfg.ActiveAttr != "" {
		switch strings.ToLower(strings.TrimSpace(entry.GetAttributeValue(cfg.ActiveAttr))) {
		case "", "true", "1", "yes", "active":
		default:
			active = false
		}
	}

	return &Member{
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
		Active:   active,
	}
}
