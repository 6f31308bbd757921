// Package profile carries the signed-in member identity and the profile data
// auto-fetch fields draw from. Authentication itself happens elsewhere; the
// engine only consumes the resolved identity.
package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vstopensource/formfill/pkg/model"
	"github.com/vstopensource/formfill/pkg/store"
)

// Identity is the authenticated user as reported by the auth provider.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Profile is the member document snapshot used by auto-fetch fields. Only the
// known profile field set is exposed to schemas.
type Profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Whatsapp       string `json:"whatsapp"`
	GithubUsername string `json:"githubUsername"`
}

// Resolve returns the profile value for an auto-fetch field name, or the
// empty string for names outside the known set.
func (p Profile) Resolve(field string) string {
	switch field {
	case "name":
		return p.Name
	case "email":
		return p.Email
	case "phone":
		return p.Phone
	case "whatsapp":
		return p.Whatsapp
	case "githubUsername":
		return p.GithubUsername
	default:
		return ""
	}
}

// UserInfo builds the submission snapshot, falling back to identity-provided
// display name and email when the profile misses them.
func (p Profile) UserInfo(ident Identity) model.UserInfo {
	info := model.UserInfo{
		Name:           p.Name,
		Email:          p.Email,
		GithubUsername: p.GithubUsername,
		PhotoURL:       ident.PhotoURL,
	}
	if info.Name == "" {
		info.Name = ident.DisplayName
	}
	if info.Email == "" {
		info.Email = ident.Email
	}
	return info
}

// Load reads the member document for the identity. A missing document or a
// store failure degrades to an identity-derived profile rather than failing
// the page.
func Load(ctx context.Context, st store.DocumentStore, ident Identity, log *slog.Logger) Profile {
	if log == nil {
		log = slog.Default()
	}
	fallback := Profile{Name: ident.DisplayName, Email: ident.Email}

	doc, err := st.Get(ctx, store.CollectionMembers, ident.UID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("load member profile", "userId", ident.UID, "error", err)
		}
		return fallback
	}

	out := Profile{
		Name:           stringField(doc, "name"),
		Email:          stringField(doc, "email"),
		Phone:          stringField(doc, "phone"),
		Whatsapp:       stringField(doc, "whatsapp"),
		GithubUsername: stringField(doc, "githubUsername"),
	}
	if out.Name == "" {
		out.Name = stringField(doc, "displayName")
	}
	if out.GithubUsername == "" {
		if github, ok := doc["github"].(map[string]any); ok {
			out.GithubUsername = stringField(github, "username")
		}
	}
	if out.Name == "" {
		out.Name = ident.DisplayName
	}
	if out.Email == "" {
		out.Email = ident.Email
	}
	return out
}

func stringField(doc map[string]any, key string) string {
	value, _ := doc[key].(string)
	return value
}
