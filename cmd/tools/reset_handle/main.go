// Command reset_handle drops every stored item, shingle, signature and
// similarity row for one handle, forcing a clean refetch on its next
// pipeline run.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	handle := flag.String("handle", "", "handle to reset (required)")
	flag.Parse()

	if *handle == "" {
		log.Fatal("usage: reset_handle -handle=<handle>")
	}

	endpoint := os.Getenv("MONGO_ENDPOINT")
	if endpoint == "" {
		endpoint = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		log.Fatalf("unable to connect to %s: %v", endpoint, err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("styleprint")
	filter := bson.D{{Key: "handle", Value: *handle}}

	for _, collection := range []string{"items", "shingles", "signatures"} {
		res, err := db.Collection(collection).DeleteMany(ctx, filter)
		if err != nil {
			log.Fatalf("failed to delete from %s: %v", collection, err)
		}
		log.Printf("deleted %d documents from %s for handle %q", res.DeletedCount, collection, *handle)
	}

	similarityFilter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "source_handle", Value: *handle}},
		bson.D{{Key: "target_handle", Value: *handle}},
	}}}
	res, err := db.Collection("similarities").DeleteMany(ctx, similarityFilter)
	if err != nil {
		log.Fatalf("failed to delete from similarities: %v", err)
	}
	log.Printf("deleted %d documents from similarities for handle %q", res.DeletedCount, *handle)
}
