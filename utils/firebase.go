package utils

import (
	"context"

	"gigbook/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseInit builds the FCM client. Without FIREBASE_CREDENTIALS_FILE push
// delivery is disabled and nil is returned.
func FirebaseInit(ctx context.Context) (*messaging.Client, error) {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		GetLogger().Warn("FIREBASE_CREDENTIALS_FILE not set, push delivery disabled")
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, err
	}
	return app.Messaging(ctx)
}
