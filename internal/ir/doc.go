// Package ir defines the intermediate representation of parsed static
// declarations and their content-addressed identity.
//
// A declaration file parses into a File holding an ordered list of Decl
// values. Each Decl is one `[pub] static NAME: TYPE = INIT;` clause with
// its source position. Decls are independent of each other; order matters
// only for diagnostics and deterministic output.
//
// Identity is content-addressed: DeclID and FileDigest hash the canonical
// JSON form of the declaration manifest (see MarshalCanonical). The
// generation cache keys on these digests, so canonical serialization must
// be byte-stable across runs and platforms.
package ir
