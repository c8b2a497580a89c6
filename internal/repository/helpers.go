package repository

import "strings"

// likePattern builds a lower-cased LIKE pattern for a substring match.
// LIKE wildcards typed by the user are matched literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// likeEscape must follow every LIKE that takes a likePattern argument.
const likeEscape = ` ESCAPE '\'`
