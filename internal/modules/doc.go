// Package modules is the static catalog of module descriptors.
//
// Descriptors are declared in modules.yaml, embedded at build time, and
// loaded into a Catalog. Nothing is discovered at runtime: adding a module
// means adding an entry to the YAML file and rebuilding.
//
// The catalog answers which node types exist (used as the scene registry's
// type validator), which modules belong to a category, and in what order
// modules must be initialised given their dependencies.
package modules
