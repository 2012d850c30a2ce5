package mysql

const upsertHotelsPrefix = `
INSERT INTO hotels
  (id, name_local, name_alt, name_third, city_local, city_alt, region, address, country,
   popularity, price_tier, star_rating, lat, lon)
VALUES `

const hotelPlaceholders = "(?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

// VALUES(col) for broad MySQL/MariaDB compatibility.
const upsertHotelsOnDup = `
ON DUPLICATE KEY UPDATE
  name_local  = VALUES(name_local),
  name_alt    = VALUES(name_alt),
  name_third  = VALUES(name_third),
  city_local  = VALUES(city_local),
  city_alt    = VALUES(city_alt),
  region      = VALUES(region),
  address     = VALUES(address),
  country     = VALUES(country),
  popularity  = VALUES(popularity),
  price_tier  = VALUES(price_tier),
  star_rating = VALUES(star_rating),
  lat         = VALUES(lat),
  lon         = VALUES(lon),
  updated_at  = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Ordered by id so repeated loads of an unchanged table build identical engines.
const listHotelsSQL = `
SELECT
  id, name_local, name_alt, name_third, city_local, city_alt, region, address, country,
  popularity, price_tier, star_rating, lat, lon
FROM hotels
ORDER BY id
`
