package utils

import "github.com/google/uuid"

// CanonicalUUID forme minuscule avec tirets, telle que Postgres la rend.
// Une valeur qui n'est pas un UUID est retournée inchangée.
func CanonicalUUID(id string) string {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return parsed.String()
}
