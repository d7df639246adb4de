package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/core/usecases"
	"github.com/fishivo/geocore/internal/pkg/clustering"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// boundsArgs are the viewport arguments shared by several queries.
var boundsArgs = graphql.FieldConfigArgument{
	"ne_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	"ne_lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	"sw_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	"sw_lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
}

func withArgs(base graphql.FieldConfigArgument, extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := make(graphql.FieldConfigArgument, len(base)+len(extra))
	for k, v := range base {
		args[k] = v
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func boundsFromArgs(args map[string]interface{}) domain.MapBounds {
	return domain.MapBounds{
		NE: domain.Coordinate{Latitude: args["ne_lat"].(float64), Longitude: args["ne_lng"].(float64)},
		SW: domain.Coordinate{Latitude: args["sw_lat"].(float64), Longitude: args["sw_lng"].(float64)},
	}
}

func coordinateMap(c domain.Coordinate) map[string]interface{} {
	return map[string]interface{}{"latitude": c.Latitude, "longitude": c.Longitude}
}

func itemMap(i domain.ClusterableItem) map[string]interface{} {
	return map[string]interface{}{"id": i.ID, "lat": i.Lat(), "lng": i.Lng()}
}

// markerResultMap flattens a MarkerResult into GraphQL-friendly maps;
// [lng, lat] pairs become named fields.
func markerResultMap(res *usecases.MarkerResult) map[string]interface{} {
	individual := make([]map[string]interface{}, 0, len(res.Result.IndividualItems))
	for _, it := range res.Result.IndividualItems {
		individual = append(individual, itemMap(it))
	}
	clusters := make([]map[string]interface{}, 0, len(res.Result.Clusters))
	for _, cl := range res.Result.Clusters {
		members := make([]map[string]interface{}, 0, len(cl.Members))
		for _, m := range cl.Members {
			members = append(members, itemMap(m))
		}
		clusters = append(clusters, map[string]interface{}{
			"id":      cl.ID,
			"count":   cl.Count,
			"lat":     cl.Centroid[1],
			"lng":     cl.Centroid[0],
			"members": members,
		})
	}
	return map[string]interface{}{
		"bounds": map[string]interface{}{
			"ne": coordinateMap(res.Bounds.NE),
			"sw": coordinateMap(res.Bounds.SW),
		},
		"zoom":             res.Zoom,
		"target":           string(res.Target),
		"individual_items": individual,
		"clusters":         clusters,
		"stats":            res.Stats,
		"truncated":        res.Truncated,
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"ne": &graphql.Field{Type: coordinateType},
			"sw": &graphql.Field{Type: coordinateType},
		},
	})

	itemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapItem",
		Fields: graphql.Fields{
			"id":  &graphql.Field{Type: graphql.String},
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	clusterType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cluster",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.String},
			"count":   &graphql.Field{Type: graphql.Int},
			"lat":     &graphql.Field{Type: graphql.Float},
			"lng":     &graphql.Field{Type: graphql.Float},
			"members": &graphql.Field{Type: graphql.NewList(itemType)},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ClusteringStats",
		Fields: graphql.Fields{
			"total_items":      &graphql.Field{Type: graphql.Int},
			"clusters":         &graphql.Field{Type: graphql.Int},
			"individual_items": &graphql.Field{Type: graphql.Int},
			"clustered_items":  &graphql.Field{Type: graphql.Int},
			"reduction_ratio":  &graphql.Field{Type: graphql.Int},
			"avg_cluster_size": &graphql.Field{Type: graphql.Int},
		},
	})

	markersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Markers",
		Fields: graphql.Fields{
			"bounds":           &graphql.Field{Type: boundsType},
			"zoom":             &graphql.Field{Type: graphql.Float},
			"target":           &graphql.Field{Type: graphql.String},
			"individual_items": &graphql.Field{Type: graphql.NewList(itemType)},
			"clusters":         &graphql.Field{Type: graphql.NewList(clusterType)},
			"stats":            &graphql.Field{Type: statsType},
			"truncated":        &graphql.Field{Type: graphql.Boolean},
		},
	})

	spotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Spot",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: coordinateType},
		},
	})

	parsedType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParsedCoordinate",
		Fields: graphql.Fields{
			"format":    &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	formattedType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FormattedCoordinate",
		Fields: graphql.Fields{
			"dd":  &graphql.Field{Type: graphql.String},
			"dms": &graphql.Field{Type: graphql.String},
			"ddm": &graphql.Field{Type: graphql.String},
		},
	})

	boundsInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundsInfo",
		Fields: graphql.Fields{
			"valid":    &graphql.Field{Type: graphql.Boolean},
			"center":   &graphql.Field{Type: coordinateType},
			"area_km2": &graphql.Field{Type: graphql.Float},
			"postgis":  &graphql.Field{Type: graphql.String},
			"debug":    &graphql.Field{Type: graphql.String},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NavigationSession",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"started_at":       &graphql.Field{Type: graphql.String},
			"fixes":            &graphql.Field{Type: graphql.Int},
			"smoothed_sog":     &graphql.Field{Type: graphql.Float},
			"smoothed_heading": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"markers": &graphql.Field{
				Type:        markersType,
				Description: "Clustered markers for a viewport",
				Args: withArgs(boundsArgs, graphql.FieldConfigArgument{
					"zoom":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"target":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"padding": &graphql.ArgumentConfig{Type: graphql.Float},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := usecases.MarkerQuery{
						Bounds: boundsFromArgs(p.Args),
						Zoom:   p.Args["zoom"].(float64),
						Target: clustering.PerformanceTarget(p.Args["target"].(string)),
					}
					if padding, ok := p.Args["padding"].(float64); ok {
						q.Padding = &padding
					}
					res, err := deps.Markers.Markers(p.Context, q)
					if err != nil {
						return nil, err
					}
					return markerResultMap(res), nil
				},
			},
			"spot": &graphql.Field{
				Type:        spotType,
				Description: "Get a spot by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					spot, err := deps.Markers.Spot(p.Context, p.Args["id"].(string))
					if err != nil || spot == nil {
						return nil, err
					}
					return map[string]interface{}{
						"id":       spot.ID,
						"name":     spot.Name,
						"location": coordinateMap(spot.Location),
					}, nil
				},
			},
			"parseCoordinate": &graphql.Field{
				Type:        parsedType,
				Description: "Parse a DD, DMS or DDM coordinate string",
				Args: graphql.FieldConfigArgument{
					"input":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"format": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := p.Args["input"].(string)
					notation := geospatial.DetectFormat(input)
					if f := p.Args["format"].(string); f != "" {
						notation = geospatial.ParseNotation(f)
					}
					coord, ok := notation.Parse(input)
					if !ok || notation == geospatial.NotationUnknown {
						return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCoordinate, input)
					}
					return map[string]interface{}{
						"format":    string(notation),
						"latitude":  coord.Latitude,
						"longitude": coord.Longitude,
					}, nil
				},
			},
			"formatCoordinate": &graphql.Field{
				Type:        formattedType,
				Description: "Render a position in every notation",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					if !geospatial.ValidateCoordinateBounds(lat, lng) {
						return nil, fmt.Errorf("%w: %v, %v", domain.ErrInvalidCoordinate, lat, lng)
					}
					f := formatCoordinate(lat, lng)
					return map[string]interface{}{"dd": f.DD, "dms": f.DMS, "ddm": f.DDM}, nil
				},
			},
			"boundsInfo": &graphql.Field{
				Type:        boundsInfoType,
				Description: "Describe a viewport",
				Args:        boundsArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					info := boundsInfo(boundsFromArgs(p.Args))
					m := map[string]interface{}{
						"valid":    info.Valid,
						"area_km2": info.AreaKm2,
						"postgis":  info.PostGIS,
						"debug":    info.Debug,
					}
					if info.Center != nil {
						m["center"] = coordinateMap(*info.Center)
					}
					return m, nil
				},
			},
			"navigationSession": &graphql.Field{
				Type:        sessionType,
				Description: "Current navigation session of a vessel",
				Args: graphql.FieldConfigArgument{
					"vessel": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, err := deps.Navigation.Session(p.Args["vessel"].(string))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"id":               snap.ID,
						"started_at":       snap.StartedAt.Format(time.RFC3339),
						"fixes":            snap.Fixes,
						"smoothed_sog":     snap.SmoothedSOG,
						"smoothed_heading": snap.SmoothedHeading,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
