// Package extract parses structured attributes out of the free-text labels
// addons attach to streams. No two addons agree on a schema, so matching is
// driven by ordered, case-insensitive rule tables: the first matching pattern
// wins per attribute family, and an attribute that fails to match is simply
// absent. The package is stateless and raises no errors.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cehbz/torrentname"

	"mediadeck/internal/models"
)

// Input carries the raw per-stream text fields. Fields are concatenated in
// strict priority order (filename, description, title, name) so that the most
// reliable source wins when patterns overlap.
type Input struct {
	Filename     string
	Description  string
	Title        string
	Name         string
	ProviderName string
	SizeBytes    int64
}

type rule struct {
	pattern *regexp.Regexp
	value   string
}

func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var resolutionRules = []rule{
	{re(`\b(2160p|4k|uhd)\b`), "2160p"},
	{re(`\b1440p\b`), "1440p"},
	{re(`\b1080p\b`), "1080p"},
	{re(`\b720p\b`), "720p"},
	{re(`\b576p\b`), "576p"},
	{re(`\b480p\b`), "480p"},
}

var formatRules = []rule{
	{re(`\bremux\b`), "Remux"},
	{re(`\b(blu-?ray|bdrip|brrip)\b`), "BluRay"},
	{re(`\bweb-?dl\b`), "WEB-DL"},
	{re(`\bwebrip\b`), "WEBRip"},
	{re(`\bhdtv\b`), "HDTV"},
	{re(`\bdvdrip\b`), "DVDRip"},
	{re(`\b(cam|telesync)\b`), "CAM"},
}

var codecRules = []rule{
	{re(`\bav1\b`), "AV1"},
	{re(`\b(x265|h\.?265|hevc)\b`), "H.265"},
	{re(`\b(x264|h\.?264|avc)\b`), "H.264"},
	{re(`\bxvid\b`), "XviD"},
	{re(`\bmpeg-?2\b`), "MPEG-2"},
}

var audioRules = []rule{
	{re(`\batmos\b`), "Atmos"},
	{re(`\btrue-?hd\b`), "TrueHD"},
	{re(`\bdts-?hd(?:[ .]?ma)?\b`), "DTS-HD"},
	{re(`\bdts\b`), "DTS"},
	{re(`\b(e-?ac-?3|dd\+|ddp)\b`), "EAC3"},
	{re(`\b(ac-?3|dd5\.?1)\b`), "AC3"},
	{re(`\baac\b`), "AAC"},
	{re(`\bflac\b`), "FLAC"},
	{re(`\bopus\b`), "Opus"},
	{re(`\bmp3\b`), "MP3"},
}

var languageRules = []rule{
	{re(`\bmulti\b`), "MULTI"},
	{re(`\bvostfr\b`), "VOSTFR"},
	{re(`\b(truefrench|vff|vfq|french|vf)\b`), "FRENCH"},
	{re(`\b(english|eng)\b`), "ENGLISH"},
	{re(`\b(german|deutsch)\b`), "GERMAN"},
	{re(`\b(spanish|castellano)\b`), "SPANISH"},
	{re(`\bitalian\b`), "ITALIAN"},
}

var (
	dolbyVisionPattern = re(`\b(dolby.?vision|dovi|dv)\b`)
	hdrPattern         = re(`\bhdr(10\+?)?\b`)
	tenBitPattern      = re(`\b(10.?bits?|hi10p?)\b`)
)

// cachedOnPatterns capture the debrid or cache service a stream is already
// staged on, in the two label shapes seen in the wild.
var cachedOnPatterns = []*regexp.Regexp{
	re(`\bcached\s+(?:on|via)\s+([a-z0-9][a-z0-9.-]*)`),
	re(`\[([a-z]{2,12})\+\]`),
}

var releaseGroupPatterns = []*regexp.Regexp{
	re(`-([a-z0-9]{2,20})(?:\.(?:mkv|mp4|avi))?\s*$`),
	re(`-([a-z0-9]{2,20})(?:[\]\s.])`),
}

// genericGroupWords are frequent false positives of the release-group
// heuristic: language tags and attribute tokens that follow a hyphen.
var genericGroupWords = map[string]bool{
	"multi": true, "french": true, "truefrench": true, "vostfr": true,
	"english": true, "german": true, "spanish": true, "italian": true,
	"vf": true, "vo": true, "subbed": true, "dubbed": true,
	"hdr": true, "dv": true, "x264": true, "x265": true, "hevc": true,
	"dl": true, "rip": true,
}

var sizeTokenPattern = re(`\b(\d+(?:[.,]\d+)?)\s?(gb|gib|mb|mib)\b`)

var numericResolution = regexp.MustCompile(`^\d{3,4}p$`)

// Extract parses the structured attribute bag out of one stream's text
// fields. Running it twice over the same input yields identical attributes.
func Extract(in Input) models.ExtractedAttributes {
	var attrs models.ExtractedAttributes

	// The declared filename is the most reliable source, so a release-name
	// parse of it seeds resolution and codec before the rule tables run.
	if in.Filename != "" {
		if parsed := torrentname.Parse(in.Filename); parsed != nil {
			attrs.Resolution = normalizeResolution(parsed.Resolution)
			attrs.Codec = matchFirst(codecRules, parsed.Codec)
		}
	}

	combined := combinedText(in)

	if attrs.Resolution == "" {
		attrs.Resolution = matchFirst(resolutionRules, combined)
	}
	if attrs.Codec == "" {
		attrs.Codec = matchFirst(codecRules, combined)
	}
	attrs.Format = matchFirst(formatRules, combined)
	attrs.Audio = matchFirst(audioRules, combined)
	attrs.Language = matchFirst(languageRules, combined)

	// A Dolby Vision match implies HDR. Flags are only ever raised within
	// one pass, so a weaker HDR-only match cannot downgrade Dolby Vision.
	if dolbyVisionPattern.MatchString(combined) {
		attrs.DolbyVision = true
		attrs.HDR = true
	}
	if hdrPattern.MatchString(combined) {
		attrs.HDR = true
	}
	if tenBitPattern.MatchString(combined) {
		attrs.TenBit = true
	}

	attrs.CachedOn = matchCapture(cachedOnPatterns, combined)
	attrs.ReleaseGroup = releaseGroup(combined, in.ProviderName)
	attrs.Size = extractSize(in.SizeBytes, combined)

	return attrs
}

func combinedText(in Input) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{in.Filename, in.Description, in.Title, in.Name} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func matchFirst(rules []rule, text string) string {
	if text == "" {
		return ""
	}
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.value
		}
	}
	return ""
}

func matchCapture(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// releaseGroup applies the hyphen-suffix heuristic and discards matches that
// are really the addon's display name or a language tag.
func releaseGroup(text, providerName string) string {
	for _, p := range releaseGroupPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			group := m[1]
			if strings.EqualFold(group, providerName) {
				continue
			}
			if genericGroupWords[strings.ToLower(group)] {
				continue
			}
			return group
		}
	}
	return ""
}

// extractSize formats a provider-declared byte count with binary prefixes;
// the declared count takes precedence over any textual size token.
func extractSize(sizeBytes int64, text string) string {
	if sizeBytes > 0 {
		return humanSize(sizeBytes)
	}
	if m := sizeTokenPattern.FindStringSubmatch(text); m != nil {
		unit := strings.ToUpper(m[2])
		unit = strings.Replace(unit, "IB", "B", 1)
		return strings.Replace(m[1], ",", ".", 1) + " " + unit
	}
	return ""
}

func humanSize(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(1<<20))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func normalizeResolution(res string) string {
	res = strings.ToLower(strings.TrimSpace(res))
	switch res {
	case "":
		return ""
	case "4k", "uhd", "2160":
		return "2160p"
	}
	if numericResolution.MatchString(res) {
		return res
	}
	return ""
}
