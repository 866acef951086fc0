package config

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var ErrEmptyParameter = errors.New("parameter has no value")

// ParameterGetter is the subset of the SSM client used to resolve secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig -> %w", err)
	}

	return ssm.NewFromConfig(cfg), nil
}

type secretRef struct {
	parameter string
	target    *string
}

func (c *AppConfig) secretRefs() []secretRef {
	var refs []secretRef
	if c.Postgres.PasswordParameter != "" {
		refs = append(refs, secretRef{c.Postgres.PasswordParameter, &c.Postgres.Password})
	}
	if c.API.CronSigningKeyParameter != "" {
		refs = append(refs, secretRef{c.API.CronSigningKeyParameter, &c.API.CronSigningKey})
	}

	return refs
}

// NeedsSecrets reports whether any value is configured to come from
// Parameter Store.
func (c *AppConfig) NeedsSecrets() bool {
	return len(c.secretRefs()) > 0
}

// ResolveSecrets loads the Postgres password from postgres.password_parameter
// and the cron signing key from api.cron_signing_key_parameter. A parameter
// that is set replaces the value given in the config file or environment.
func ResolveSecrets(ctx context.Context, conf *AppConfig, client ParameterGetter) error {
	for _, ref := range conf.secretRefs() {
		value, err := getParameter(ctx, client, ref.parameter)
		if err != nil {
			return fmt.Errorf("getParameter(%s) -> %w", ref.parameter, err)
		}
		*ref.target = value
	}

	return nil
}

func getParameter(ctx context.Context, client ParameterGetter, name string) (string, error) {
	decrypt := true
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", err
	}

	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", ErrEmptyParameter
	}

	return *out.Parameter.Value, nil
}
