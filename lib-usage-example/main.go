package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/recdash/recdash/pkg/apiclient"
	"github.com/recdash/recdash/pkg/recommendations"
)

func main() {
	// Usage: go run ./lib-usage-example -username "alice" -password "secret"

	apiFlag := flag.String("api", apiclient.DefaultBaseURL, "Recommendations API base URL")
	userFlag := flag.String("username", "", "Username")
	passFlag := flag.String("password", "", "Password")
	searchFlag := flag.String("search", "", "Search text")

	// Parse the command-line flags
	flag.Parse()

	if *userFlag == "" {
		fmt.Println("Username is required. Please provide the username using -username flag.")
		return
	}

	if *passFlag == "" {
		fmt.Println("Password is required. Please provide the password using -password flag.")
		return
	}

	client, err := apiclient.New(apiclient.Options{BaseURL: *apiFlag})
	if err != nil {
		fmt.Println(err)
		return
	}
	svc := recommendations.NewService(client, recommendations.DefaultPageSize)

	ctx := context.Background()
	resp, err := svc.Login(ctx, *userFlag, *passFlag)
	if err != nil {
		fmt.Println(apiclient.Message(err))
		return
	}
	client.SetAuthToken(resp.Token)

	// Walk every page of the active list
	filter := recommendations.Filter{Search: *searchFlag}
	for {
		page, err := svc.GetRecommendations(ctx, filter)
		if err != nil {
			fmt.Println(apiclient.Message(err))
			return
		}
		for _, r := range page.Data {
			fmt.Println(r.RecommendationID, r.Title, r.Score)
		}
		next, ok := page.NextCursor()
		if !ok {
			break
		}
		filter.Cursor = next
	}
}
