/*
Package archive reads QIIME 2 results (.qza and .qzv files) and implements
ports.Loader over their provenance.

A result is a zip container whose sole top-level entry is a directory named
with the result UUID:

	<uuid>/VERSION
	<uuid>/metadata.yaml
	<uuid>/data/...
	<uuid>/provenance/action/action.yaml
	<uuid>/provenance/metadata.yaml
	<uuid>/provenance/artifacts/<ancestor>/action/action.yaml
	<uuid>/provenance/artifacts/<ancestor>/metadata.yaml

Open also accepts an extracted container or the UUID directory itself.
*/
package archive
