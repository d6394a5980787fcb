/*
Package session seals identity claims into opaque cookie values and opens
them again.

A sealed value is AES-GCM(nonce, HS256-JWS(claim)): the claim is serialized
and MACed with the signing key, then the whole signed token is encrypted
with the encryption key. The client can neither read nor alter it.

There is no server-side session table. The sealed cookie is the session,
which is why every request must re-read the account it names (see
auth.Revalidator): nothing about the account other than its username is
trusted from the cookie. Logging out clears the cookie on the client; a
copied value stays usable until it expires or the account's credentials
change.

Keys are loaded once at startup. Replacing either key invalidates every
outstanding session at once; there is no dual-key grace period.
*/
package session
