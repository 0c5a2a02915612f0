/*
Package sobind generates Go bindings for the functions of a C shared
library from its headers.

The generated package calls the library at runtime through libffi
(github.com/jupiterrider/ffi); no cgo is involved.

# Architecture pipeline (for developers)

Each element in the pipeline has distinct sub-packages that do a specific part. These are then "glued" together in [pipeline.Run].
 1. [config]: Parse flags, SOBIND_* environment variables and the optional rules file
 2. [symtab]: List the exported function symbols of the library with readelf
 3. [macro]: Extract and type the #define constants of the raw headers
 4. [decl]: Extract functions, structs, enums and typedefs from the preprocessed headers
 5. [ctypes]: Resolve C type spellings through typedef chains to Go types
 6. [emitter]: Bind everything that can be bound and write the Go package

Everything that cannot be bound is collected in a [report.Report] instead of failing the run.
*/
package sobind
