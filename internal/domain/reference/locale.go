package reference

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mdm/backend/internal/domain/shared"
	"golang.org/x/text/language"
)

// DefaultLocale is used when a caller passes the "use default" form of a
// lookup (empty locale).
const DefaultLocale = "en-US"

// DefaultTenantID is the tenant assumed when a caller omits the tenant
// argument and does not want the purely global set.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// DefaultSupportedLocales is the locale set a resolver accepts unless
// configured otherwise.
func DefaultSupportedLocales() []string {
	return []string{"en-US", "en-GB", "nl-NL", "fr-FR", "de-DE", "zh-CN"}
}

// NormalizeLocale parses a locale identifier and returns its canonical BCP 47
// form ("en-us" -> "en-US"). Malformed identifiers fail with INVALID_ARGUMENT.
func NormalizeLocale(id string) (string, error) {
	if id == "" {
		return "", shared.InvalidArgument("locale identifier cannot be empty")
	}
	tag, err := language.Parse(id)
	if err != nil {
		return "", shared.InvalidArgument(fmt.Sprintf("malformed locale identifier %q", id))
	}
	return tag.String(), nil
}

// localeSet is a canonicalized membership set of supported locales.
type localeSet map[string]struct{}

func newLocaleSet(ids []string) (localeSet, error) {
	set := make(localeSet, len(ids))
	for _, id := range ids {
		canonical, err := NormalizeLocale(id)
		if err != nil {
			return nil, err
		}
		set[canonical] = struct{}{}
	}
	return set, nil
}

// resolve validates a requested locale against the set, substituting the
// default for the empty "use default" form. Returns the canonical identifier.
func (s localeSet) resolve(id string) (string, error) {
	if id == "" {
		id = DefaultLocale
	}
	canonical, err := NormalizeLocale(id)
	if err != nil {
		return "", err
	}
	if _, ok := s[canonical]; !ok {
		return "", shared.InvalidArgument(fmt.Sprintf("unsupported locale %q", id))
	}
	return canonical, nil
}
