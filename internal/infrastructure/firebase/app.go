package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"storefront/pkg/logger"
)

// Clients bundles everything the storefront talks to in a Firebase project.
type Clients struct {
	Auth      *FirebaseAuthClient
	Firestore *firestore.Client
}

// CredentialsOption prefers inline service account JSON over a file path.
// With neither set, application default credentials are used.
func CredentialsOption(serviceAccountJSON, serviceAccountPath string) (option.ClientOption, error) {
	if serviceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(serviceAccountJSON)), nil
	}

	if serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); err != nil {
			return nil, fmt.Errorf("service account file %s: %w", serviceAccountPath, err)
		}
		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		return option.WithCredentialsFile(serviceAccountPath), nil
	}

	logger.Info("Using application default credentials")
	return nil, nil
}

func NewClients(ctx context.Context, projectID string, opt option.ClientOption) (*Clients, error) {
	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}

	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth: %w", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &Clients{
		Auth:      NewFirebaseAuthClient(authClient),
		Firestore: firestoreClient,
	}, nil
}

func (c *Clients) Close() error {
	return c.Firestore.Close()
}
