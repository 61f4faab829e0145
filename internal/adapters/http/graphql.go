package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

var errUnavailable = errors.New("service not available")

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	invocationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Invocation",
		Fields: graphql.Fields{
			"center_longitude":   &graphql.Field{Type: graphql.Float},
			"center_latitude":    &graphql.Field{Type: graphql.Float},
			"extent_km":          &graphql.Field{Type: graphql.Float},
			"timezone":           &graphql.Field{Type: graphql.String},
			"element_identifier": &graphql.Field{Type: graphql.String},
			"request_token":      &graphql.Field{Type: graphql.String},
			"job_id":             &graphql.Field{Type: graphql.String},
			"status":             &graphql.Field{Type: graphql.String},
			"artifact_key":       &graphql.Field{Type: graphql.String},
			"frames":             &graphql.Field{Type: graphql.Int},
		},
	})

	jobType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Job",
		Fields: graphql.Fields{
			"invocation": &graphql.Field{Type: invocationType},
			"stage":      &graphql.Field{Type: graphql.String},
			"error":      &graphql.Field{Type: graphql.String},
			"updated_at": &graphql.Field{Type: graphql.String},
		},
	})

	artifactType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Artifact",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"job_id":       &graphql.Field{Type: graphql.String},
			"key":          &graphql.Field{Type: graphql.String},
			"element":      &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"center_lon":   &graphql.Field{Type: graphql.Float},
			"center_lat":   &graphql.Field{Type: graphql.Float},
			"extent_km":    &graphql.Field{Type: graphql.Float},
			"frames":       &graphql.Field{Type: graphql.Int},
			"bytes":        &graphql.Field{Type: graphql.Int},
			"published_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	workflowRunType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WorkflowRun",
		Fields: graphql.Fields{
			"workflow_id": &graphql.Field{Type: graphql.String},
			"run_id":      &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"job": &graphql.Field{
				Type:        jobType,
				Description: "Latest tracked state of a query job",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Jobs == nil {
						return nil, errUnavailable
					}
					view, err := deps.Jobs.Get(p.Context, p.Args["id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					return view, err
				},
			},
			"artifacts": &graphql.Field{
				Type:        graphql.NewList(artifactType),
				Description: "Most recently published animations",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Artifacts == nil {
						return nil, errUnavailable
					}
					return deps.Artifacts.Recent(p.Context, p.Args["limit"].(int))
				},
			},
			"artifact": &graphql.Field{
				Type:        artifactType,
				Description: "Animation published by a job",
				Args: graphql.FieldConfigArgument{
					"job_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Artifacts == nil {
						return nil, errUnavailable
					}
					a, err := deps.Artifacts.ByJob(p.Context, p.Args["job_id"].(string))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					return a, err
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"startForecast": &graphql.Field{
				Type:        workflowRunType,
				Description: "Start a forecast workflow",
				Args: graphql.FieldConfigArgument{
					"center_longitude":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"center_latitude":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"extent_km":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"timezone":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"element_identifier": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Starter == nil {
						return nil, errUnavailable
					}
					inv := domain.Invocation{
						CenterLongitude:   p.Args["center_longitude"].(float64),
						CenterLatitude:    p.Args["center_latitude"].(float64),
						ExtentKm:          p.Args["extent_km"].(float64),
						Timezone:          p.Args["timezone"].(string),
						ElementIdentifier: p.Args["element_identifier"].(string),
					}
					if err := usecases.Validate(inv); err != nil {
						return nil, err
					}
					return deps.Starter.Start(p.Context, inv)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
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
