package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hotel_search/internal/domain"
)

/********** alias registries (single source of truth) **********/

// hotelAliases lists, per HotelRecord field, the column names or JSON paths a
// catalog source may use for it. The first non-empty candidate wins.
var hotelAliases = map[string][]string{
	"id":         {"id", "ID", "hotel_id", "hotelId", "Hotel ID", "酒店ID", "编号"},
	"name_local": {"hotel_name_cn", "name_local", "nameLocal", "酒店名称(中)", "酒店名称", "Hotel Name CN", "中文名称", "名称", "name_cn"},
	"name_alt":   {"hotel_name_en", "name_alt", "nameAlt", "酒店名称(英)", "Hotel Name EN", "英文名称", "English Name", "name_en", "name"},
	"name_third": {"hotel_name_jp", "name_third", "nameThird", "Hotel Name JP", "日文名称", "Japanese Name", "name_jp"},
	"city_local": {"city_name_cn", "city_local", "cityLocal", "城市名称(中)", "城市", "City CN", "中文城市", "city_cn"},
	"city_alt":   {"city_name_en", "city_alt", "cityAlt", "城市名称(英)", "City EN", "英文城市", "English City", "city_en", "city", "address.city"},
	"region":     {"region_name", "region", "所属区域", "区域", "Region", "地区", "area", "district", "address.district"},
	"address":    {"address", "酒店详细地址", "地址描述", "地址", "Address", "详细地址", "location", "address.line", "full_address"},
	"country":    {"country", "Country", "国家", "address.country", "country_code"},
	"price":      {"price_range", "priceTier", "价格", "Price", "价格范围", "费用"},
	"stars":      {"star_rating", "starRating", "星级", "Star Rating", "星级评定", "stars", "等级", "rating.stars"},
	"popularity": {"search_count", "popularity", "搜索热度", "热度"},
	"lat":        {"latitude", "lat", "纬度", "location.lat"},
	"lon":        {"longitude", "lng", "lon", "经度", "location.lng", "location.lon"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps. A key that itself
// contains a dot (spreadsheet headers) is tried verbatim first.
func lookupAny(m map[string]any, path string) any {
	if v, ok := m[path]; ok {
		return v
	}
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the value at path as trimmed text, or "".
// Numbers are formatted without a trailing ".0" so numeric ids survive JSON.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		s := strings.TrimSpace(v)
		if strings.EqualFold(s, "nan") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

var digitRun = regexp.MustCompile(`\d+`)

// parseStars takes the first digit run ("4星", "4 stars", 4.0) clamped to 1..5.
// 0 means the source had no usable rating, or said 0.
func parseStars(m map[string]any) int {
	s := firstNonEmptyAlias(m, hotelAliases, "stars")
	d := digitRun.FindString(s)
	if d == "" {
		return 0
	}
	n, err := strconv.Atoi(d)
	if err != nil || n == 0 {
		return 0
	}
	return min(max(n, 1), 5)
}

// splitAltName splits "本地名 (Alt Name)" (ASCII or full-width parentheses)
// into its two halves. ok is false when name has no such suffix.
func splitAltName(name string) (local, alt string, ok bool) {
	name = strings.TrimSpace(name)
	for _, p := range [][2]string{{"(", ")"}, {"（", "）"}} {
		open := strings.Index(name, p[0])
		if open <= 0 || !strings.HasSuffix(name, p[1]) {
			continue
		}
		local = strings.TrimSpace(name[:open])
		alt = strings.TrimSpace(strings.TrimSuffix(name[open+len(p[0]):], p[1]))
		if local != "" && alt != "" {
			return local, alt, true
		}
	}
	return name, "", false
}

// estimatePopularity stands in for a missing popularity column: better rated
// hotels get more searches, very cheap and very expensive ones are nudged.
func estimatePopularity(stars int, priceTier string) int64 {
	mult := map[int]float64{1: 0.5, 2: 0.8, 3: 1.0, 4: 1.5, 5: 2.0}[stars]
	if mult == 0 {
		mult = 1.0
	}
	count := 500 * mult
	switch {
	case strings.Contains(priceTier, "¥5,000"), strings.Contains(priceTier, "¥6,000"):
		count *= 1.2
	case strings.Contains(priceTier, "¥20,000"), strings.Contains(priceTier, "¥30,000"):
		count *= 0.8
	}
	return int64(count)
}

/********** hotel mapper **********/

// MapHotelRow turns one raw catalog row into a HotelRecord. row is the
// 0-based position of the row in its source and only feeds the id fallback.
func MapHotelRow(p map[string]any, row int) domain.HotelRecord {
	h := domain.HotelRecord{
		ID:         firstNonEmptyAlias(p, hotelAliases, "id"),
		NameLocal:  firstNonEmptyAlias(p, hotelAliases, "name_local"),
		NameAlt:    firstNonEmptyAlias(p, hotelAliases, "name_alt"),
		NameThird:  firstNonEmptyAlias(p, hotelAliases, "name_third"),
		CityLocal:  firstNonEmptyAlias(p, hotelAliases, "city_local"),
		CityAlt:    firstNonEmptyAlias(p, hotelAliases, "city_alt"),
		Region:     firstNonEmptyAlias(p, hotelAliases, "region"),
		Address:    firstNonEmptyAlias(p, hotelAliases, "address"),
		Country:    firstNonEmptyAlias(p, hotelAliases, "country"),
		PriceTier:  firstNonEmptyAlias(p, hotelAliases, "price"),
		StarRating: parseStars(p),
		Lat:        getFloatFlexible(p, hotelAliases["lat"]...),
		Lon:        getFloatFlexible(p, hotelAliases["lon"]...),
	}
	if h.ID == "" {
		h.ID = fmt.Sprintf("row_%06d", row+1)
	}
	if local, alt, ok := splitAltName(h.NameLocal); ok {
		h.NameLocal = local
		if h.NameAlt == "" {
			h.NameAlt = alt
		}
	}
	if pop := firstInt64Flexible(p, hotelAliases["popularity"]...); pop != nil && *pop >= 0 {
		h.Popularity = *pop
	} else {
		h.Popularity = estimatePopularity(h.StarRating, h.PriceTier)
	}
	if h.Lat == nil || h.Lon == nil {
		h.Lat, h.Lon = nil, nil
	}
	return h
}

// MapHotelRows maps every row and drops those that fail validation. The
// returned rejects carry the reason per dropped row.
func MapHotelRows(rows []map[string]any) (hs []domain.HotelRecord, rejects []error) {
	hs = make([]domain.HotelRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		h := MapHotelRow(r, i)
		if err := h.Validate(); err != nil {
			rejects = append(rejects, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		if _, dup := seen[h.ID]; dup {
			rejects = append(rejects, fmt.Errorf("row %d: %w: %s", i+1, domain.ErrDuplicateID, h.ID))
			continue
		}
		seen[h.ID] = struct{}{}
		hs = append(hs, h)
	}
	return hs, rejects
}
