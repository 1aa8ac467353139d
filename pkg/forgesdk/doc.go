// Package forgesdk is a typed client for the ForgeERP REST backend.
//
// Unauthenticated calls (login, health) live on SDKClient. Everything that
// needs a bearer credential lives on Session, which holds the access token
// explicitly; nothing is read from ambient state.
//
//	client := forgesdk.NewSDKClient("http://localhost:8000")
//	session, err := client.AuthenticateWithPassword(ctx, "admin", "secret")
//	if err != nil {
//		return err
//	}
//	clients, err := session.ListClients(ctx)
//
// Every non-2xx response is returned as *APIError, whose Error() is the
// backend's detail message and is safe to show to the user.
package forgesdk
