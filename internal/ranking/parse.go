package ranking

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenPattern         = regexp.MustCompile(`[\p{L}\p{N}']+`)
	yearPattern          = regexp.MustCompile(`^(19\d{2}|20\d{2})$`)
	seasonEpisodePattern = regexp.MustCompile(`(?i)^s(\d{1,2})e(\d{1,3})(?:-?e?(\d{1,3}))?$`)
	seasonXEpisode       = regexp.MustCompile(`(?i)^(\d{1,2})x(\d{1,3})$`)
	seasonOnlyPattern    = regexp.MustCompile(`(?i)^s(\d{1,2})$`)
	episodeRange         = regexp.MustCompile(`(?i)(s\d{1,2}e\d{1,3})-e?(\d{1,3})\b`)
	resolutionPattern    = regexp.MustCompile(`(?i)^(2160p|4k|uhd|1080p|1080i|720p|576p|480p)$`)
)

var trashTokens = map[string]struct{}{
	"cam": {}, "hdcam": {}, "camrip": {}, "telesync": {}, "hdts": {}, "telecine": {}, "hdtc": {},
}

// Release is what can be read from a release name
type Release struct {
	Title      string
	Year       int
	Season     int
	Episodes   []int
	Resolution string
	// SeasonPack is set for whole season releases
	SeasonPack bool
	Trash      bool
}

// HasSeason reports whether the release names a season
func (r Release) HasSeason() bool {
	return r.Season > 0 || r.SeasonPack
}

// HasEpisode reports whether the release contains episode n
func (r Release) HasEpisode(n int) bool {
	for _, e := range r.Episodes {
		if e == n {
			return true
		}
	}
	return false
}

// ParseRelease extracts title, year, season, episodes and resolution from a
// scene style release name such as "Breaking.Bad.S01E02.1080p.WEB-DL".
// The title is everything before the first year, episode or quality marker.
func ParseRelease(raw string) Release {
	var rel Release
	normalized := episodeRange.ReplaceAllString(strings.ToLower(raw), "${1}e${2}")
	tokens := tokenPattern.FindAllString(normalized, -1)
	titleDone := false
	titleTokens := make([]string, 0, len(tokens))

	for i, tok := range tokens {
		marker := true
		switch {
		case seasonEpisodePattern.MatchString(tok):
			m := seasonEpisodePattern.FindStringSubmatch(tok)
			rel.Season = atoi(m[1])
			first := atoi(m[2])
			last := first
			if m[3] != "" {
				last = atoi(m[3])
			}
			for e := first; e <= last && e-first < 100; e++ {
				rel.Episodes = append(rel.Episodes, e)
			}
		case seasonXEpisode.MatchString(tok):
			m := seasonXEpisode.FindStringSubmatch(tok)
			rel.Season = atoi(m[1])
			rel.Episodes = append(rel.Episodes, atoi(m[2]))
		case seasonOnlyPattern.MatchString(tok):
			rel.Season = atoi(seasonOnlyPattern.FindStringSubmatch(tok)[1])
			rel.SeasonPack = true
		case tok == "season" && i+1 < len(tokens) && isNumber(tokens[i+1]):
			rel.Season = atoi(tokens[i+1])
			rel.SeasonPack = true
		case tok == "complete":
			rel.SeasonPack = true
		case resolutionPattern.MatchString(tok):
			rel.Resolution = normalizeResolution(tok)
		case yearPattern.MatchString(tok) && (titleDone || len(titleTokens) > 0):
			rel.Year = atoi(tok)
		default:
			if _, ok := trashTokens[tok]; ok {
				rel.Trash = true
			}
			marker = false
		}

		if marker {
			titleDone = true
			continue
		}
		if !titleDone {
			titleTokens = append(titleTokens, tok)
		}
	}

	if len(rel.Episodes) > 0 {
		rel.SeasonPack = false
	}
	rel.Title = strings.Join(titleTokens, " ")
	return rel
}

func normalizeResolution(tok string) string {
	switch strings.ToLower(tok) {
	case "2160p", "4k", "uhd":
		return "2160p"
	case "1080i":
		return "1080p"
	default:
		return strings.ToLower(tok)
	}
}

// normalizeTitle lowercases a title and strips punctuation
func normalizeTitle(title string) string {
	return strings.Join(tokenPattern.FindAllString(strings.ToLower(title), -1), " ")
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
