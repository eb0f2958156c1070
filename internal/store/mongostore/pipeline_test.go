package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/db"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
)

func stageNames(p []bson.D) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func nearbyQuery(radius *float64) search.NearbyQuery {
	return search.NearbyQuery{
		Filter:     search.Filter{Status: models.PetStatusAvailable, Species: "dog"},
		Pagination: search.Pagination{Page: 3, Limit: 12},
		Center:     search.Point{Lat: 12.95, Lng: 77.70},
		RadiusKm:   radius,
	}
}

func TestPetFilter(t *testing.T) {
	f := petFilter(search.Filter{Status: models.PetStatusPending, Gender: "male", Search: "a.b"})

	assert.Equal(t, models.PetStatusPending, f["status"])
	assert.Equal(t, "male", f["gender"])
	assert.NotContains(t, f, "species")
	assert.NotContains(t, f, "size")
	assert.Equal(t, bson.M{"$regex": `a\.b`, "$options": "i"}, f["name"])
}

func TestListFilter_CenterSphereInRadians(t *testing.T) {
	q := search.ListQuery{
		Filter: search.Filter{Status: models.PetStatusAvailable},
		Geo:    &search.Radius{Center: search.Point{Lat: 10, Lng: 20}, Km: search.EarthRadiusKm},
	}
	f := listFilter(q)

	within := f["location"].(bson.M)["$geoWithin"].(bson.M)["$centerSphere"].(bson.A)
	assert.Equal(t, bson.A{20.0, 10.0}, within[0], "center is [lng, lat]")
	assert.InDelta(t, 1.0, within[1], 1e-12)

	q.Geo = nil
	assert.NotContains(t, listFilter(q), "location")
}

func TestListPipeline_Shape(t *testing.T) {
	q := search.ListQuery{
		Filter:     search.Filter{Status: models.PetStatusAvailable},
		Pagination: search.Pagination{Page: 2, Limit: 10},
		Sort:       search.SortField{Field: "adoptionFee"},
	}
	p := listPipeline(q)

	assert.Equal(t, []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$unwind"}, stageNames(p))
	assert.Equal(t, bson.D{{Key: "adoptionFee", Value: 1}, {Key: "_id", Value: 1}}, p[1][0].Value)
	assert.Equal(t, int64(10), p[2][0].Value)
	assert.Equal(t, int64(10), p[3][0].Value)
}

func TestNearbyPipelines_RadiusOnlyWhenSet(t *testing.T) {
	page, count := nearbyPipelines(nearbyQuery(nil))

	assert.Equal(t, []string{"$geoNear", "$sort", "$skip", "$limit", "$lookup", "$unwind", "$addFields"}, stageNames(page))
	assert.Equal(t, []string{"$geoNear", "$count"}, stageNames(count))

	geoNear := page[0][0].Value.(bson.M)
	assert.NotContains(t, geoNear, "maxDistance", "absent radius means unlimited")
	assert.Equal(t, "distance", geoNear["distanceField"])
	assert.Equal(t, true, geoNear["spherical"])
	assert.Equal(t, models.NewPoint(12.95, 77.70), geoNear["near"])
	assert.Equal(t, []float64{77.70, 12.95}, geoNear["near"].(models.GeoJSON).Coordinates, "near is [lng, lat]")
	assert.Equal(t, "dog", geoNear["query"].(bson.M)["species"])

	zero := 0.0
	page, _ = nearbyPipelines(nearbyQuery(&zero))
	assert.InDelta(t, 0.0, page[0][0].Value.(bson.M)["maxDistance"], 1e-2, "explicit zero radius is kept")

	ten := 10.0
	page, count = nearbyPipelines(nearbyQuery(&ten))
	assert.InDelta(t, 10000*mongoEarthRadiusKm/search.EarthRadiusKm, page[0][0].Value.(bson.M)["maxDistance"], 1e-2)
	assert.Equal(t, page[0], count[0], "count uses the same predicate")
	assert.Equal(t, int64(24), page[2][0].Value)
}

// MongoDB reports GeoJSON distances on its own 6378.1 km sphere. The radius
// is widened by the same ratio so membership matches the Haversine boundary.
func TestGeoNearStage_BoundaryMatchesHaversine(t *testing.T) {
	ten := 10.0
	q := nearbyQuery(&ten)
	maxDistance := geoNearStage(q)[0].Value.(bson.M)["maxDistance"].(float64)

	onCircle := func(km float64) float64 {
		lat, lng := search.Destination(q.Center.Lat, q.Center.Lng, km, 73)
		return toMongoMeters(search.HaversineMeters(q.Center.Lat, q.Center.Lng, lat, lng))
	}

	assert.LessOrEqual(t, onCircle(10.0), maxDistance, "a listing at exactly 10 km is included")
	assert.Greater(t, onCircle(10.001), maxDistance, "a listing at 10.001 km is excluded")
	assert.Greater(t, onCircle(10.0), 10000.0, "the unscaled radius would have dropped the boundary")
}

func TestNearbyPipelines_DistanceRescaledToHaversine(t *testing.T) {
	page, _ := nearbyPipelines(nearbyQuery(nil))
	fields := page[len(page)-1][0].Value.(bson.M)

	ratio := search.EarthRadiusKm / mongoEarthRadiusKm
	want := bson.M{"$multiply": bson.A{"$distance", ratio}}
	assert.Equal(t, want, fields["distance"])
	assert.Equal(t, bson.M{"$round": bson.A{bson.M{"$divide": bson.A{want, 1000}}, 1}}, fields["distanceInKm"])
}

func TestNearbySort(t *testing.T) {
	tests := []struct {
		order search.Order
		field string
		dir   int
	}{
		{search.OrderNearest, "distance", 1},
		{search.OrderFarthest, "distance", -1},
		{search.OrderNewest, "createdAt", -1},
		{search.OrderOldest, "createdAt", 1},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			s := nearbySort(tt.order)
			require.Len(t, s, 2)
			assert.Equal(t, tt.field, s[0].Key)
			assert.Equal(t, tt.dir, s[0].Value)
			assert.Equal(t, "_id", s[1].Key)
		})
	}
}

func TestUserLookup_ProjectsSummary(t *testing.T) {
	stages := userLookup("owner", "ownerInfo", false)
	require.Len(t, stages, 2)

	lookup := stages[0][0].Value.(bson.M)
	assert.Equal(t, db.UsersCollection, lookup["from"])
	assert.Equal(t, "ownerInfo", lookup["as"])
	project := lookup["pipeline"].(bson.A)[1].(bson.M)["$project"].(bson.M)
	assert.NotContains(t, project, "password")
	assert.NotContains(t, project, "location")

	unwind := stages[1][0].Value.(bson.M)
	assert.Equal(t, true, unwind["preserveNullAndEmptyArrays"])

	withLoc := userLookup("requester", "requesterInfo", true)[0][0].Value.(bson.M)
	assert.Contains(t, withLoc["pipeline"].(bson.A)[1].(bson.M)["$project"], "location")
}

func TestRequestDetailPipeline(t *testing.T) {
	owner := primitive.NewObjectID()
	p := requestDetailPipeline(bson.M{"owner": owner})

	assert.Equal(t, []string{"$match", "$sort", "$lookup", "$unwind", "$lookup", "$unwind", "$lookup", "$unwind"}, stageNames(p))
	assert.Equal(t, bson.M{"owner": owner}, p[0][0].Value)
	assert.Equal(t, "petInfo", p[2][0].Value.(bson.M)["as"])
}
