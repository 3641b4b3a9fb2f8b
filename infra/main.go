package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/Marcos1701/finquest-backend/infra/cloudrun"
	"github.com/Marcos1701/finquest-backend/infra/docker"
	"github.com/Marcos1701/finquest-backend/infra/firestore"
	"github.com/Marcos1701/finquest-backend/infra/identity"
	"github.com/Marcos1701/finquest-backend/infra/provider"
	"github.com/Marcos1701/finquest-backend/infra/vertex"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity platform to allow using firebase auth
		_, err = identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// enable firestore and create a database for the project
		err = firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// enable vertex ai for mission generation
		err = vertex.SetupVertex(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx)
		if err != nil {
			return err
		}

		_, err = cloudrun.SetupCloudRun(ctx, prov, repo)
		if err != nil {
			return err
		}

		return nil
	})
}
