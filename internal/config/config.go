// Package config handles settings, the local account store, and importing
// Cloudflare credentials from Kubernetes secrets.
package config

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/Azahorscak/nyxflare/internal/api"
)

// Keys read from an imported secret.
const (
	secretTokenKey     = "cloudflare_api_token"
	secretEmailKey     = "cloudflare_email"
	secretAccountIDKey = "cloudflare_account_id"
)

// secretRef holds the parsed namespace and name of a Kubernetes secret.
type secretRef struct {
	Namespace string
	Name      string
}

// parseSecretRef parses a "namespace/secret-name" string into its parts.
func parseSecretRef(ref string) (secretRef, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return secretRef{}, fmt.Errorf("invalid --secret value %q: expected namespace/secret-name", ref)
	}
	return secretRef{Namespace: parts[0], Name: parts[1]}, nil
}

// buildKubeClient creates a Kubernetes clientset from the given kubeconfig path.
// If kubeconfig is empty, it falls back to in-cluster config.
func buildKubeClient(kubeconfig string) (kubernetes.Interface, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		// Try loading from default kubeconfig location, fall back to in-cluster.
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		configOverrides := &clientcmd.ConfigOverrides{}
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules, configOverrides).ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return client, nil
}

// AccountFromSecret builds an account from a Kubernetes secret.
//
// secretFlag is the --secret flag value in "namespace/secret-name" format.
// kubeconfig is an optional path to a kubeconfig file (empty uses the default).
// The account is named after the secret reference.
func AccountFromSecret(ctx context.Context, secretFlag string, kubeconfig string) (api.Account, error) {
	ref, err := parseSecretRef(secretFlag)
	if err != nil {
		return api.Account{}, err
	}

	client, err := buildKubeClient(kubeconfig)
	if err != nil {
		return api.Account{}, err
	}

	return accountFromClient(ctx, client, ref)
}

// accountFromClient fetches the secret using the provided Kubernetes client.
// Separated from AccountFromSecret to allow testing with a fake clientset.
func accountFromClient(ctx context.Context, client kubernetes.Interface, ref secretRef) (api.Account, error) {
	secret, err := client.CoreV1().Secrets(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return api.Account{}, fmt.Errorf("fetching secret %s/%s: %w", ref.Namespace, ref.Name, err)
	}

	token, ok := secret.Data[secretTokenKey]
	if !ok {
		return api.Account{}, fmt.Errorf("secret %s/%s does not contain key %q", ref.Namespace, ref.Name, secretTokenKey)
	}

	tokenStr := strings.TrimSpace(string(token))
	if tokenStr == "" {
		return api.Account{}, fmt.Errorf("secret %s/%s has an empty %q value", ref.Namespace, ref.Name, secretTokenKey)
	}

	return api.Account{
		Name:      ref.Namespace + "/" + ref.Name,
		APIToken:  tokenStr,
		Email:     strings.TrimSpace(string(secret.Data[secretEmailKey])),
		AccountID: strings.TrimSpace(string(secret.Data[secretAccountIDKey])),
		AuthMode:  api.AuthToken,
	}, nil
}
