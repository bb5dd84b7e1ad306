package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// PlaceholderImageURL backs listings whose rows carry no usable image.
const PlaceholderImageURL = "https://crunch.directory/assets/restaurant-placeholder.jpg"

// Historical field spellings per attribute. Rows imported over the
// directory's lifetime use a mix of these; first present key wins.
var (
	nameKeys             = []string{"name", "restaurant_name", "title"}
	addressKeys          = []string{"address", "street_address", "full_address", "location"}
	neighborhoodKeys     = []string{"neighborhood", "neighbourhood", "area", "district"}
	cityKeys             = []string{"city", "city_name", "town"}
	cuisineKeys          = []string{"cuisine", "cuisine_type", "food_type"}
	hoursKeys            = []string{"hours", "opening_hours", "hours_of_operation", "open_hours"}
	phoneKeys            = []string{"phone", "phone_number", "telephone"}
	emailKeys            = []string{"email", "contact_email"}
	websiteKeys          = []string{"website", "website_url", "url", "site"}
	priceKeys            = []string{"price_range", "price", "price_level"}
	dietKeys             = []string{"dietary_tags", "dietary_options", "diets"}
	oilsUsedKeys         = []string{"oils_used", "cooking_oils", "oils"}
	oilsAvoidedKeys      = []string{"oils_avoided", "avoided_oils", "excluded_oils"}
	verificationKeys     = []string{"verification_method", "verified_by", "verification_notes", "verification"}
	verificationDateKeys = []string{"verification_date", "verified_at", "date_verified"}
	ratingKeys           = []string{"rating", "avg_rating", "stars"}
	reviewCountKeys      = []string{"review_count", "reviews_count", "num_reviews"}
	imageKeys            = []string{"image_url", "image", "photo_url", "thumbnail"}
	galleryKeys          = []string{"images", "image_urls", "photos", "gallery"}
	latitudeKeys         = []string{"latitude", "lat"}
	longitudeKeys        = []string{"longitude", "lng", "lon"}
	updatedKeys          = []string{"last_updated", "updated_at", "last_modified", "created_at"}
	dishKeys             = []string{"recommended_dishes", "recommended", "menu_highlights", "dishes"}
	socialKeys           = []string{"social_links", "social_media", "socials"}
	outdoorSeatingKeys   = []string{"outdoor_seating", "has_outdoor_seating", "patio"}
	deliveryKeys         = []string{"delivery", "has_delivery", "offers_delivery"}
	familyFriendlyKeys   = []string{"family_friendly", "kid_friendly"}
	celiacSafeKeys       = []string{"celiac_safe", "celiac_friendly", "dedicated_gluten_free"}
)

// NormalizeRestaurant converts a raw backend row into the canonical listing
// shape. It never fails: attributes that cannot be decoded degrade to their
// zero value or documented placeholder, so one malformed row can never take
// down a whole page of results.
func NormalizeRestaurant(row map[string]any) Restaurant {
	r := Restaurant{
		ID:           normalizeID(row["id"]),
		Name:         stringField(row, nameKeys),
		Address:      stringField(row, addressKeys),
		Neighborhood: stringField(row, neighborhoodKeys),
		Cuisine:      stringField(row, cuisineKeys),
		Hours:        hoursField(row),
		Phone:        stringField(row, phoneKeys),
		Email:        stringField(row, emailKeys),
		Website:      stringField(row, websiteKeys),
	}

	r.City = resolveCity(row, r.Address, r.Neighborhood)
	r.PriceRange = priceRangeField(row)
	r.DietaryTags = CanonicalDietTags(stringListField(row, dietKeys))
	r.OilsUsed = nonNilList(stringListField(row, oilsUsedKeys))
	r.OilsAvoided = nonNilList(stringListField(row, oilsAvoidedKeys))

	r.VerificationMethod = ClassifyVerification(stringField(row, verificationKeys))
	r.VerificationDate = verificationDateField(row)

	if rating, ok := floatValue(row, ratingKeys); ok {
		r.Rating = clampRating(rating)
	}
	if count, ok := floatValue(row, reviewCountKeys); ok && count > 0 {
		r.ReviewCount = int(count)
	}

	r.ImageURL, r.ImageURLs = resolveImages(row)

	r.Latitude = floatPtrField(row, latitudeKeys)
	r.Longitude = floatPtrField(row, longitudeKeys)

	r.OutdoorSeating = boolPtrField(row, outdoorSeatingKeys)
	r.Delivery = boolPtrField(row, deliveryKeys)
	r.FamilyFriendly = boolPtrField(row, familyFriendlyKeys)
	r.CeliacSafe = boolPtrField(row, celiacSafeKeys)

	r.RecommendedDishes = dishesField(row)
	r.SocialLinks = socialLinksField(row)

	if when, ok := timeValue(row, updatedKeys); ok {
		r.LastUpdated = when
	} else {
		r.LastUpdated = time.Now().UTC()
	}
	return r
}

// NormalizePendingSubmission converts a raw moderation queue row.
func NormalizePendingSubmission(row map[string]any) PendingSubmission {
	p := PendingSubmission{
		ID:           normalizeID(row["id"]),
		Name:         stringField(row, nameKeys),
		Address:      stringField(row, addressKeys),
		Neighborhood: stringField(row, neighborhoodKeys),
		Cuisine:      stringField(row, cuisineKeys),
		Phone:        stringField(row, phoneKeys),
		Email:        stringField(row, emailKeys),
		Website:      stringField(row, websiteKeys),
		Notes:        stringField(row, []string{"notes", "comments", "message"}),
		Status:       SubmissionPending,
	}
	p.City = resolveCity(row, p.Address, p.Neighborhood)
	if status, ok := asString(row["status"]); ok && strings.TrimSpace(status) != "" {
		p.Status = SubmissionStatus(foldKey(status))
	}
	if when, ok := timeValue(row, []string{"created_at", "submitted_at"}); ok {
		p.CreatedAt = when
	}
	return p
}

func normalizeID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

func resolveCity(row map[string]any, address, neighborhood string) string {
	raw := stringField(row, cityKeys)
	if raw == "" {
		if embed, ok := row["cities"].(map[string]any); ok {
			raw, _ = asString(embed["name"])
		}
	}
	if strings.TrimSpace(raw) != "" {
		if city, ok := LookupCity(raw); ok {
			return city
		}
		if city, ok := InferCity(raw); ok {
			return city
		}
		return ""
	}
	if city, ok := InferCity(address + " " + neighborhood); ok {
		return city
	}
	return ""
}

func priceRangeField(row map[string]any) string {
	v, ok := firstValue(row, priceKeys)
	if !ok {
		return ""
	}
	if s, ok := asString(v); ok {
		s = strings.TrimSpace(s)
		for _, tier := range PriceTiers {
			if s == tier {
				return tier
			}
		}
		return ""
	}
	if f, ok := asFloat(v); ok {
		level := int(f)
		if level >= 1 && level <= len(PriceTiers) {
			return PriceTiers[level-1]
		}
	}
	return ""
}

func verificationDateField(row map[string]any) string {
	raw := stringField(row, verificationDateKeys)
	if raw == "" {
		return ""
	}
	if when, ok := parseWhen(raw); ok {
		return when.Format("2006-01-02")
	}
	return raw
}

func clampRating(rating float64) float64 {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// --- generic row coercion ---

func firstValue(row map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(row map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := asString(row[key]); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func floatValue(row map[string]any, keys []string) (float64, bool) {
	v, ok := firstValue(row, keys)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

func floatPtrField(row map[string]any, keys []string) *float64 {
	if f, ok := floatValue(row, keys); ok {
		return &f
	}
	return nil
}

func boolPtrField(row map[string]any, keys []string) *bool {
	v, ok := firstValue(row, keys)
	if !ok {
		return nil
	}
	if b, ok := asBool(v); ok {
		return &b
	}
	return nil
}

func timeValue(row map[string]any, keys []string) (time.Time, bool) {
	v, ok := firstValue(row, keys)
	if !ok {
		return time.Time{}, false
	}
	return parseWhen(v)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch foldKey(t) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}

var whenLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

func parseWhen(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return time.Time{}, false
		}
		for _, layout := range whenLayouts {
			if when, err := time.Parse(layout, raw); err == nil {
				return when.UTC(), true
			}
		}
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		// Epoch millis for modern rows, seconds for the oldest imports.
		if t > 1e12 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		return time.Unix(int64(t), 0).UTC(), true
	}
	return time.Time{}, false
}

// --- list decoding ---

// Tag columns must always decode to arrays, never null.
func nonNilList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func stringListField(row map[string]any, keys []string) []string {
	v, ok := firstValue(row, keys)
	if !ok {
		return nil
	}
	return decodeStringList(v)
}

// decodeStringList accepts the shapes tag columns have gone through:
// a JSON array, a JSON-encoded string, a delimited string, and the
// association-row form produced by relational embeds.
func decodeStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(t))
		for _, entry := range t {
			if trimmed := strings.TrimSpace(entry); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return dedupeStrings(out)
	case []any:
		out := make([]string, 0, len(t))
		for _, entry := range t {
			switch item := entry.(type) {
			case string:
				if trimmed := strings.TrimSpace(item); trimmed != "" {
					out = append(out, trimmed)
				}
			case map[string]any:
				if name := embeddedName(item); name != "" {
					out = append(out, name)
				}
			}
		}
		return dedupeStrings(out)
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return nil
		}
		if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				return decodeStringList(parsed)
			}
		}
		return dedupeStrings(splitDelimited(raw))
	case map[string]any:
		if name := embeddedName(t); name != "" {
			return []string{name}
		}
	}
	return nil
}

// embeddedName digs the display name out of an association row, including
// the nested join shape ({"dietary_tags": {"name": ...}}).
func embeddedName(entry map[string]any) string {
	for _, key := range []string{"name", "tag", "label", "value", "title"} {
		if s, ok := asString(entry[key]); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	for _, nested := range entry {
		if m, ok := nested.(map[string]any); ok {
			if name := embeddedName(m); name != "" {
				return name
			}
		}
	}
	return ""
}

func splitDelimited(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := foldKey(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// --- image resolution ---

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// resolveImages picks the listing's primary image and gallery. The primary
// field wins when it holds an absolute URL; otherwise the first absolute
// URL recovered from the gallery column is promoted. Rows with no usable
// image fall back to the shared placeholder.
func resolveImages(row map[string]any) (string, []string) {
	gallery := make([]string, 0, 4)
	if primary := stringField(row, imageKeys); isAbsoluteURL(primary) {
		gallery = append(gallery, primary)
	}
	if v, ok := firstValue(row, galleryKeys); ok {
		gallery = append(gallery, imageCandidates(v)...)
	}
	gallery = dedupeStrings(gallery)
	if len(gallery) == 0 {
		return PlaceholderImageURL, nil
	}
	return gallery[0], gallery
}

// imageCandidates walks the historical gallery shapes in a fixed order:
// array of strings, array of objects with url/src, object with url/src,
// object with a nested images array, plain string. Strings are tried as
// JSON first so double-encoded columns still decode.
func imageCandidates(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, entry := range t {
			switch item := entry.(type) {
			case string:
				if isAbsoluteURL(item) {
					out = append(out, strings.TrimSpace(item))
				}
			case map[string]any:
				if u := objectURL(item); u != "" {
					out = append(out, u)
				}
			}
		}
		return out
	case map[string]any:
		if u := objectURL(t); u != "" {
			return []string{u}
		}
		if nested, ok := t["images"].([]any); ok {
			return imageCandidates(nested)
		}
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return nil
		}
		if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				return imageCandidates(parsed)
			}
		}
		if isAbsoluteURL(raw) {
			return []string{raw}
		}
	}
	return nil
}

func objectURL(entry map[string]any) string {
	for _, key := range []string{"url", "src", "image_url", "href"} {
		if s, ok := asString(entry[key]); ok && isAbsoluteURL(s) {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// --- recommended dishes ---

func dishesField(row map[string]any) []RecommendedDish {
	v, ok := firstValue(row, dishKeys)
	if !ok {
		return nil
	}
	return decodeDishes(v)
}

func decodeDishes(v any) []RecommendedDish {
	switch t := v.(type) {
	case []any:
		out := make([]RecommendedDish, 0, len(t))
		for _, entry := range t {
			switch item := entry.(type) {
			case string:
				if trimmed := strings.TrimSpace(item); trimmed != "" {
					out = append(out, RecommendedDish{Name: trimmed})
				}
			case map[string]any:
				if dish, ok := dishFromObject(item); ok {
					out = append(out, dish)
				}
			}
		}
		return out
	case map[string]any:
		if dish, ok := dishFromObject(t); ok {
			return []RecommendedDish{dish}
		}
		// Oldest rows store a name -> notes object.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]RecommendedDish, 0, len(keys))
		for _, k := range keys {
			notes, _ := asString(t[k])
			out = append(out, RecommendedDish{Name: k, Notes: strings.TrimSpace(notes)})
		}
		return out
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return nil
		}
		if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				return decodeDishes(parsed)
			}
		}
		return []RecommendedDish{{Name: raw}}
	}
	return nil
}

func dishFromObject(entry map[string]any) (RecommendedDish, bool) {
	var dish RecommendedDish
	for _, key := range []string{"name", "title", "dish"} {
		if s, ok := asString(entry[key]); ok && strings.TrimSpace(s) != "" {
			dish.Name = strings.TrimSpace(s)
			break
		}
	}
	if dish.Name == "" {
		return RecommendedDish{}, false
	}
	for _, key := range []string{"notes", "description", "comment", "why"} {
		if s, ok := asString(entry[key]); ok && strings.TrimSpace(s) != "" {
			dish.Notes = strings.TrimSpace(s)
			break
		}
	}
	return dish, true
}

// --- social links ---

var socialPlatformOrder = []string{"instagram", "facebook", "tiktok", "twitter", "youtube", "yelp"}

var socialPlatformHosts = map[string]string{
	"instagram.com": "instagram",
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"tiktok.com":    "tiktok",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"yelp.com":      "yelp",
	"linkedin.com":  "linkedin",
	"pinterest.com": "pinterest",
}

func socialLinksField(row map[string]any) []SocialLink {
	v, ok := firstValue(row, socialKeys)
	if !ok {
		return nil
	}
	return decodeSocialLinks(v)
}

func decodeSocialLinks(v any) []SocialLink {
	switch t := v.(type) {
	case []any:
		out := make([]SocialLink, 0, len(t))
		for _, entry := range t {
			switch item := entry.(type) {
			case string:
				if isAbsoluteURL(item) {
					out = append(out, SocialLink{Platform: inferPlatform(item), URL: strings.TrimSpace(item)})
				}
			case map[string]any:
				if link, ok := socialFromObject(item); ok {
					out = append(out, link)
				}
			}
		}
		return out
	case map[string]any:
		if link, ok := socialFromObject(t); ok {
			return []SocialLink{link}
		}
		// Platform -> URL object, ordered by the platform list.
		out := make([]SocialLink, 0, len(t))
		remaining := make(map[string]string, len(t))
		for k, raw := range t {
			if s, ok := asString(raw); ok && strings.TrimSpace(s) != "" {
				remaining[foldKey(k)] = strings.TrimSpace(s)
			}
		}
		for _, platform := range socialPlatformOrder {
			if u, ok := remaining[platform]; ok {
				out = append(out, SocialLink{Platform: platform, URL: u})
				delete(remaining, platform)
			}
		}
		rest := make([]string, 0, len(remaining))
		for k := range remaining {
			rest = append(rest, k)
		}
		sort.Strings(rest)
		for _, platform := range rest {
			out = append(out, SocialLink{Platform: platform, URL: remaining[platform]})
		}
		return out
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return nil
		}
		if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
			var parsed any
			if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
				return decodeSocialLinks(parsed)
			}
		}
		if isAbsoluteURL(raw) {
			return []SocialLink{{Platform: inferPlatform(raw), URL: raw}}
		}
	}
	return nil
}

func socialFromObject(entry map[string]any) (SocialLink, bool) {
	var link SocialLink
	for _, key := range []string{"url", "link", "href"} {
		if s, ok := asString(entry[key]); ok && isAbsoluteURL(s) {
			link.URL = strings.TrimSpace(s)
			break
		}
	}
	if link.URL == "" {
		return SocialLink{}, false
	}
	for _, key := range []string{"platform", "name", "site"} {
		if s, ok := asString(entry[key]); ok && strings.TrimSpace(s) != "" {
			link.Platform = foldKey(s)
			break
		}
	}
	if link.Platform == "" {
		link.Platform = inferPlatform(link.URL)
	}
	return link, true
}

func inferPlatform(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "website"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if platform, ok := socialPlatformHosts[host]; ok {
		return platform
	}
	return "website"
}

func hoursField(row map[string]any) string {
	v, ok := firstValue(row, hoursKeys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		lines := make([]string, 0, len(t))
		for _, entry := range t {
			if s, ok := asString(entry); ok && strings.TrimSpace(s) != "" {
				lines = append(lines, strings.TrimSpace(s))
			}
		}
		return strings.Join(lines, "; ")
	}
	return ""
}
