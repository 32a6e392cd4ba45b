// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package fetch performs HTTP exchanges and composes behavior around them.

A Transport turns a URL and Options into a *response.Response. Client.Perform
is the base Transport: it builds the request, dispatches it through a Doer
and converts whatever comes back into a Response. Nothing short of a network
fault escapes as a Go error; construction and decode problems become an
errored Response.

Middleware wrap a Transport and return a Transport with the same signature:

	logged := func(next fetch.Transport, env fetch.Env) fetch.Transport {
		return func(ctx context.Context, url string, opts fetch.Options) (*response.Response, error) {
			env.Logger.Info("request", "url", url)
			return next(ctx, url, opts)
		}
	}

Compose folds a list right-to-left so the first middleware is outermost: it
sees the request first and the response last.

	t := fetch.Compose(client.Perform, env, auth.Authentication(), wire.WireFormat())

Env carries the collaborators middleware consult per call: the session
store, the action dispatcher, the alert sink and a logger.
*/
package fetch
