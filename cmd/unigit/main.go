package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/unigit/unigit/adapter/cnb"
	"github.com/unigit/unigit/adapter/gitcode"
	"github.com/unigit/unigit/adapter/gitee"
	"github.com/unigit/unigit/adapter/github"
	"github.com/unigit/unigit/app"
	"github.com/unigit/unigit/transport"
)

func main() {
	l := logrus.New()

	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		l.Fatalf("couldn't parse config: %v", err)
	}
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		l.Fatalf("couldn't parse log level: %v", err)
	}
	l.Level = level
	logrus.SetLevel(level)

	httpClient, err := transport.NewHTTPClient(conf.Proxy, conf.RequestTimeout)
	if err != nil {
		l.Fatalf("couldn't create http client: %v", err)
	}
	limitedHTTPClient := transport.NewLimitedDoer(httpClient, conf.APIRateLimit)

	client, err := newClient(conf.Provider, limitedHTTPClient)
	if err != nil {
		l.Fatal(err)
	}
	if conf.Token != "" {
		if err := client.SetToken(conf.Token); err != nil {
			l.Fatalf("couldn't set token: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.RequestTimeout)
	defer cancel()

	log := l.WithField("provider", conf.Provider)

	var out struct {
		User         *app.UserInfo           `json:"user,omitempty"`
		Repo         *app.RepoInfo           `json:"repo,omitempty"`
		Contribution *app.ContributionResult `json:"contribution,omitempty"`
	}

	var user app.UserInfo
	if conf.Login != "" {
		user, err = client.UserInfoByName(ctx, conf.Login)
	} else {
		user, err = client.UserInfo(ctx)
	}
	if err != nil {
		log.Fatalf("couldn't fetch user info: %v", err)
	}
	out.User = &user

	if conf.WithContribution {
		contribution, err := client.UserContribution(ctx, user.Login)
		if err != nil {
			log.Fatalf("couldn't fetch contribution calendar: %v", err)
		}
		out.Contribution = &contribution
	}

	if conf.Repo != "" {
		owner, name, ok := strings.Cut(conf.Repo, "/")
		if !ok {
			log.Fatalf("invalid repo %q, expected owner/name", conf.Repo)
		}
		repo, err := client.RepoInfo(ctx, app.RepoPath{Owner: owner, Name: name})
		if err != nil {
			log.Fatalf("couldn't fetch repo info: %v", err)
		}
		out.Repo = &repo
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("couldn't encode result: %v", err)
	}
}

func newClient(provider string, doer transport.Doer) (app.Client, error) {
	switch provider {
	case "github":
		return github.NewClient(doer), nil
	case "gitee":
		return gitee.NewClient(doer), nil
	case "gitcode":
		return gitcode.NewClient(doer), nil
	case "cnb":
		return cnb.NewClient(doer), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
