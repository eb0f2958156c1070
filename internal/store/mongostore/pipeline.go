package mongostore

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ddhiman-alt/nearpaws/internal/db"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/search"
)

// petFilter translates the normalized filter into a pets predicate.
func petFilter(f search.Filter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Species != "" {
		filter["species"] = f.Species
	}
	if f.Gender != "" {
		filter["gender"] = f.Gender
	}
	if f.Size != "" {
		filter["size"] = f.Size
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": f.NamePattern(), "$options": "i"}
	}
	return filter
}

// listFilter adds the optional radius of GET /pets. $centerSphere takes
// the radius in radians.
func listFilter(q search.ListQuery) bson.M {
	filter := petFilter(q.Filter)
	if q.Geo != nil {
		filter["location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{q.Geo.Center.Lng, q.Geo.Center.Lat},
					q.Geo.Km / search.EarthRadiusKm,
				},
			},
		}
	}
	return filter
}

func sortDirection(desc bool) int {
	if desc {
		return -1
	}
	return 1
}

func listSort(s search.SortField) bson.D {
	return bson.D{{Key: s.Field, Value: sortDirection(s.Desc)}, {Key: "_id", Value: 1}}
}

func nearbySort(o search.Order) bson.D {
	switch o {
	case search.OrderFarthest:
		return bson.D{{Key: "distance", Value: -1}, {Key: "_id", Value: 1}}
	case search.OrderNewest:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	case search.OrderOldest:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "distance", Value: 1}, {Key: "_id", Value: 1}}
	}
}

func pageStages(p search.Pagination) []bson.D {
	return []bson.D{
		{{Key: "$skip", Value: int64(p.Skip())}},
		{{Key: "$limit", Value: int64(p.Limit)}},
	}
}

// userLookup joins a reduced user view from localField into as, keeping the
// parent document when the user is gone.
func userLookup(localField, as string, withLocation bool) []bson.D {
	projection := bson.M{"name": 1, "email": 1, "phone": 1}
	if withLocation {
		projection["location"] = 1
	}
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": db.UsersCollection,
			"let":  bson.M{"userId": "$" + localField},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$userId"}}}},
				bson.M{"$project": projection},
			},
			"as": as,
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
	}
}

func petLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": db.PetsCollection,
			"let":  bson.M{"petId": "$pet"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$petId"}}}},
				bson.M{"$project": bson.M{"name": 1, "species": 1, "breed": 1, "images": 1, "status": 1}},
			},
			"as": "petInfo",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$petInfo", "preserveNullAndEmptyArrays": true}}},
	}
}

// listPipeline is the page pipeline of GET /pets.
func listPipeline(q search.ListQuery) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: listFilter(q)}},
		{{Key: "$sort", Value: listSort(q.Sort)}},
	}
	pipeline = append(pipeline, pageStages(q.Pagination)...)
	pipeline = append(pipeline, userLookup("owner", "ownerInfo", false)...)
	return pipeline
}

// mongoEarthRadiusKm is the sphere $geoNear measures GeoJSON distances on.
const mongoEarthRadiusKm = 6378.1

// toMongoMeters scales a Haversine distance onto MongoDB's sphere. Both
// measure the same central angle, so the ratio of the radii converts exactly.
func toMongoMeters(meters float64) float64 {
	return meters * mongoEarthRadiusKm / search.EarthRadiusKm
}

func geoNearStage(q search.NearbyQuery) bson.D {
	geoNear := bson.M{
		"near":          models.NewPoint(q.Center.Lat, q.Center.Lng),
		"distanceField": "distance",
		"spherical":     true,
		"query":         petFilter(q.Filter),
	}
	if q.RadiusKm != nil {
		geoNear["maxDistance"] = toMongoMeters(search.MaxMeters(*q.RadiusKm))
	}
	return bson.D{{Key: "$geoNear", Value: geoNear}}
}

// nearbyPipelines returns the page pipeline and the count pipeline of a
// nearby search. Both start from the same $geoNear stage so the total always
// matches the predicate the page was cut from.
func nearbyPipelines(q search.NearbyQuery) (page mongo.Pipeline, count mongo.Pipeline) {
	geoNear := geoNearStage(q)

	page = mongo.Pipeline{
		geoNear,
		{{Key: "$sort", Value: nearbySort(q.Order)}},
	}
	page = append(page, pageStages(q.Pagination)...)
	page = append(page, userLookup("owner", "ownerInfo", false)...)
	// Report distances on the same 6371 km sphere as the memory store.
	haversine := bson.M{"$multiply": bson.A{"$distance", search.EarthRadiusKm / mongoEarthRadiusKm}}
	page = append(page, bson.D{{Key: "$addFields", Value: bson.M{
		"distance":     haversine,
		"distanceInKm": bson.M{"$round": bson.A{bson.M{"$divide": bson.A{haversine, 1000}}, 1}},
	}}})

	count = mongo.Pipeline{
		geoNear,
		{{Key: "$count", Value: "total"}},
	}
	return page, count
}

// requestDetailPipeline joins pet, requester and owner onto requests matching filter.
func requestDetailPipeline(filter bson.M) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	pipeline = append(pipeline, petLookup()...)
	pipeline = append(pipeline, userLookup("requester", "requesterInfo", true)...)
	pipeline = append(pipeline, userLookup("owner", "ownerInfo", false)...)
	return pipeline
}
