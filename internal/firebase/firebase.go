package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Clients holds the Firebase Admin clients shared by every request handler.
// Construct once per process with New and release with Close.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Messaging *messaging.Client
}

// Credentials selects how the Admin SDK authenticates. EncodedJSON (base64
// service account JSON) wins over File; with neither, application default
// credentials are used.
type Credentials struct {
	ProjectID   string
	EncodedJSON string
	File        string
}

func (c Credentials) clientOption(logger *zap.Logger) (option.ClientOption, error) {
	if c.EncodedJSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.EncodedJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %w", err)
		}
		logger.Info("firebase: using credentials from FIREBASE_SERVICE_ACCOUNT_JSON")
		return option.WithCredentialsJSON(decoded), nil
	}

	if c.File != "" {
		if _, err := os.Stat(c.File); err == nil {
			logger.Info("firebase: using credentials file", zap.String("path", c.File))
			return option.WithCredentialsFile(c.File), nil
		}
	}

	logger.Info("firebase: no explicit credentials, falling back to application default credentials")
	return nil, nil
}

func New(ctx context.Context, creds Credentials, logger *zap.Logger) (*Clients, error) {
	opt, err := creds.clientOption(logger)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}

	var conf *fb.Config
	if creds.ProjectID != "" {
		conf = &fb.Config{ProjectID: creds.ProjectID}
	}

	app, err := fb.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	msg, err := app.Messaging(ctx)
	if err != nil {
		fs.Close()
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &Clients{Auth: authClient, Firestore: fs, Messaging: msg}, nil
}

func (c *Clients) Close() error {
	if c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
