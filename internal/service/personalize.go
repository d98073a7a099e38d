package service

import (
	"strconv"
	"strings"

	"github.com/assohub/assohub-backend/internal/model"
)

// Personalize substitutes the recognized tokens in template with the
// recipient's values. Unrecognized tokens are left verbatim and an empty
// template comes back unchanged. Content is trusted as authored by an
// admin; no sanitization happens here.
func Personalize(template string, r model.Recipient) string {
	if template == "" {
		return template
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Member"
	}

	out := template
	out = strings.ReplaceAll(out, "{{name}}", name)
	out = strings.ReplaceAll(out, "{{email}}", r.Email)
	out = strings.ReplaceAll(out, "{{member_id}}", strconv.Itoa(r.MemberID))
	out = strings.ReplaceAll(out, "{{association_name}}", r.AssociationName)
	return out
}
